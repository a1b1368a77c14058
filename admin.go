// admin.go - privacy-conscious visit tracking and the admin dashboard
package main

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/AhmedUKamel/ahmedukamel.github.io/internal/config"
	"github.com/AhmedUKamel/ahmedukamel.github.io/internal/storage"
)

const (
	adminCookie      = "admin_token"
	recentLoadsLimit = 20
)

// adminAuth holds the per-process session token and the salt used to hash
// visitor IPs. Both are regenerated on every start.
type adminAuth struct {
	token       string
	hashingSalt string
	username    string
	password    string
}

func newAdminAuth(cfg config.Config) *adminAuth {
	a := &adminAuth{
		token:       generateAdminToken(),
		hashingSalt: generateAdminToken(),
		username:    cfg.AdminUsername,
		password:    cfg.AdminPassword,
	}
	if a.username == "" || a.password == "" {
		if gin.Mode() == gin.DebugMode {
			log.Warn("Using default admin credentials. Set ADMIN_USERNAME and ADMIN_PASSWORD.")
			a.username, a.password = "admin", "admin123"
		} else {
			log.Warn("ADMIN_USERNAME/ADMIN_PASSWORD not set, admin login disabled")
		}
	}
	log.Printf("Admin access available at: /admin/login")
	if gin.Mode() == gin.DebugMode {
		log.Printf("Admin token (dev only): %s", a.token)
	}
	return a
}

func generateAdminToken() string {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		log.Fatal("Failed to generate admin token:", err)
	}
	return hex.EncodeToString(bytes)
}

// hashIP returns a salted, truncated hash so raw addresses are never stored.
func (a *adminAuth) hashIP(ip string) string {
	hash := sha256.New()
	hash.Write([]byte(ip + a.hashingSalt))
	return hex.EncodeToString(hash.Sum(nil))[:16]
}

func (a *adminAuth) checkCredentials(username, password string) bool {
	if a.username == "" || a.password == "" {
		return false
	}
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(a.username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(a.password)) == 1
	return userOK && passOK
}

func (a *adminAuth) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(adminCookie)
		if err != nil || subtle.ConstantTimeCompare([]byte(token), []byte(a.token)) != 1 {
			c.Redirect(http.StatusFound, "/admin/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

var untrackedPrefixes = []string{"/static/", "/images/", "/admin/", "/favicon", "/healthz"}

// visitorTrackingMiddleware records page views with hashed IPs. Requests
// carrying DNT: 1 are never recorded.
func (a *app) visitorTrackingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, prefix := range untrackedPrefixes {
			if strings.HasPrefix(path, prefix) {
				c.Next()
				return
			}
		}
		if c.GetHeader("DNT") == "1" {
			c.Next()
			return
		}

		hashed := a.admin.hashIP(c.ClientIP())
		userAgent := c.GetHeader("User-Agent")
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := a.db.RecordVisit(ctx, hashed, userAgent, path); err != nil {
				log.Printf("Error recording visitor: %v", err)
			}
		}()
		c.Next()
	}
}

// dashboardData is what the admin dashboard template renders.
type dashboardData struct {
	Title       string
	Stats       *storage.Stats
	Loads       []storage.LoadRecord
	Source      string
	Version     string
	CacheActive bool
	Flash       string
}

func (a *app) dashboard(ctx context.Context) (*dashboardData, error) {
	stats, err := a.db.Stats(ctx, time.Now())
	if err != nil {
		return nil, err
	}
	loads, err := a.db.RecentLoads(ctx, recentLoadsLimit)
	if err != nil {
		return nil, err
	}
	data := &dashboardData{
		Title:       adminDashboardTitle,
		Stats:       stats,
		Loads:       loads,
		Source:      a.loader.Source(),
		CacheActive: a.pages.Enabled(),
	}
	if doc, ok := a.docs.Current(); ok {
		data.Version = doc.Checksum()
	}
	return data, nil
}

func (a *app) setupAdminRoutes(r *gin.Engine) {
	r.GET("/admin/login", func(c *gin.Context) {
		c.HTML(http.StatusOK, "admin_login", gin.H{
			"Title": adminLoginTitle,
		})
	})

	r.POST("/admin/login", func(c *gin.Context) {
		username := c.PostForm("username")
		password := c.PostForm("password")

		if !a.admin.checkCredentials(username, password) {
			log.Printf("Failed admin login attempt from %s", a.admin.hashIP(c.ClientIP()))
			c.HTML(http.StatusUnauthorized, "admin_login", gin.H{
				"Title": adminLoginTitle,
				"Error": invalidCredentials,
			})
			return
		}
		c.SetCookie(adminCookie, a.admin.token, 3600*24, "/admin", "", false, true)
		log.Printf("Admin login successful from %s", a.admin.hashIP(c.ClientIP()))
		c.Redirect(http.StatusFound, "/admin/dashboard")
	})

	r.GET("/admin/logout", func(c *gin.Context) {
		c.SetCookie(adminCookie, "", -1, "/admin", "", false, true)
		c.Redirect(http.StatusFound, "/admin/login")
	})

	adminGroup := r.Group("/admin")
	adminGroup.Use(a.admin.middleware())

	adminGroup.GET("/dashboard", func(c *gin.Context) {
		data, err := a.dashboard(c.Request.Context())
		if err != nil {
			log.Printf("Error loading admin stats: %v", err)
			c.HTML(http.StatusInternalServerError, "admin_error", gin.H{
				"Title": adminDashboardTitle,
				"Error": statsLoadFailed,
			})
			return
		}
		data.Flash = c.Query("flash")
		c.HTML(http.StatusOK, "admin_dashboard", data)
	})

	adminGroup.GET("/api/stats", func(c *gin.Context) {
		data, err := a.dashboard(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"stats":        data.Stats,
			"loads":        data.Loads,
			"source":       data.Source,
			"version":      data.Version,
			"cache_active": data.CacheActive,
		})
	})

	// Re-runs the loader. A failed reload keeps serving the current document.
	adminGroup.POST("/reload", func(c *gin.Context) {
		res := a.refresh(c.Request.Context())
		body := gin.H{"outcome": res.Outcome()}
		status := http.StatusOK
		if res.Ok() {
			body["version"] = res.Document().Checksum()
			body["missing"] = res.Validation().Missing
		} else {
			body["error"] = res.Err().Error()
			status = http.StatusBadGateway
		}
		log.Printf("Portfolio reload by %s: %s", a.admin.hashIP(c.ClientIP()), res.Outcome())
		if strings.Contains(c.GetHeader("Accept"), "text/html") {
			c.Redirect(http.StatusSeeOther, "/admin/dashboard?flash="+url.QueryEscape("Reload: "+res.Outcome()))
			return
		}
		c.JSON(status, body)
	})

	adminGroup.POST("/privacy/cleanup", func(c *gin.Context) {
		removed, err := a.db.Cleanup(c.Request.Context(), time.Now().Add(-storage.VisitRetention))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"removed": removed})
	})

	adminGroup.GET("/export/snapshot", func(c *gin.Context) {
		snap, err := a.db.LatestSnapshot(c.Request.Context())
		if err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, storage.ErrNoSnapshot) {
				status = http.StatusNotFound
			}
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}
		c.Header("Content-Disposition", "attachment; filename=database.json")
		c.Data(http.StatusOK, "application/json", snap.Body)
	})
}
