package main

// User-facing strings.
const (
	loadFailedMessage = "Failed to load portfolio data. Please try again later."

	adminLoginTitle     = "Admin Login"
	adminDashboardTitle = "Portfolio Dashboard"
	invalidCredentials  = "Invalid credentials"
	statsLoadFailed     = "Failed to load statistics"
)
