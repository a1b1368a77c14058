package main

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/AhmedUKamel/ahmedukamel.github.io/internal/config"
	"github.com/AhmedUKamel/ahmedukamel.github.io/internal/middleware"
	"github.com/AhmedUKamel/ahmedukamel.github.io/internal/pagecache"
	"github.com/AhmedUKamel/ahmedukamel.github.io/internal/portfolio"
	"github.com/AhmedUKamel/ahmedukamel.github.io/internal/render"
	"github.com/AhmedUKamel/ahmedukamel.github.io/internal/storage"
)

// app owns everything a request needs; there is no package-level state.
type app struct {
	cfg      config.Config
	docs     *portfolio.Store
	loader   *portfolio.Loader
	db       *storage.Store
	pages    *pagecache.Cache
	renderer *render.Renderer
	admin    *adminAuth
}

func newApp(cfg config.Config, db *storage.Store, pages *pagecache.Cache) (*app, error) {
	renderer, err := render.New()
	if err != nil {
		return nil, err
	}
	docs := portfolio.NewStore()
	source := portfolio.NewSource(cfg.Source, cfg.FetchTimeout)
	return &app{
		cfg:      cfg,
		docs:     docs,
		loader:   portfolio.NewLoader(source, docs, log.StandardLogger()),
		db:       db,
		pages:    pages,
		renderer: renderer,
		admin:    newAdminAuth(cfg),
	}, nil
}

// start runs the initial load. When it fails the last stored snapshot is
// served instead; without one the page stays in its static shell.
func (a *app) start(ctx context.Context) {
	if res := a.refresh(ctx); res.Ok() {
		return
	}
	if err := a.restoreSnapshot(ctx); err != nil {
		if errors.Is(err, storage.ErrNoSnapshot) {
			log.Warn("no stored snapshot, serving static shell")
			return
		}
		log.WithError(err).Error("restore snapshot")
	}
}

// refresh runs the loader once and records the attempt.
func (a *app) refresh(ctx context.Context) portfolio.Result {
	res := a.loader.Load(ctx)

	rec := storage.LoadRecord{
		At:      time.Now(),
		Source:  a.loader.Source(),
		Outcome: res.Outcome(),
	}
	if res.Ok() {
		doc := res.Document()
		rec.Checksum = doc.Checksum()
		rec.Missing = res.Validation().Missing
		if err := a.db.SaveSnapshot(ctx, doc.Checksum(), doc.Raw()); err != nil {
			log.WithError(err).Error("save snapshot")
		}
	} else {
		rec.Error = res.Err().Error()
	}
	if err := a.db.RecordLoad(ctx, rec); err != nil {
		log.WithError(err).Error("record load")
	}
	return res
}

func (a *app) restoreSnapshot(ctx context.Context) error {
	snap, err := a.db.LatestSnapshot(ctx)
	if err != nil {
		return err
	}
	doc, err := portfolio.Decode("snapshot", snap.Body)
	if err != nil {
		return err
	}
	a.docs.Set(doc)
	log.WithFields(log.Fields{
		"checksum": snap.Checksum,
		"saved_at": snap.SavedAt.Format(time.RFC3339),
	}).Warn("serving portfolio from stored snapshot")
	return nil
}

func (a *app) cleanupVisits(ctx context.Context) {
	removed, err := a.db.Cleanup(ctx, time.Now().Add(-storage.VisitRetention))
	if err != nil {
		log.Printf("Error cleaning up old visitor data: %v", err)
		return
	}
	if removed > 0 {
		log.Printf("Privacy cleanup: removed %d visitor records older than 12 months", removed)
	}
}

func (a *app) router() *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(log.StandardLogger(), a.admin.hashIP))
	r.Use(gin.Recovery())
	r.Use(a.visitorTrackingMiddleware())
	r.SetHTMLTemplate(a.renderer.Templates())

	r.Static("/static", a.cfg.StaticDir)
	r.Static("/images", a.cfg.ImagesDir)

	r.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	r.GET("/", a.home)
	r.GET("/database.json", a.documentJSON)

	a.setupAdminRoutes(r)
	return r
}

const htmlContentType = "text/html; charset=utf-8"

// home renders the portfolio, reusing a cached rendering of the same
// document version when one exists.
func (a *app) home(c *gin.Context) {
	doc, ok := a.docs.Current()
	if !ok {
		a.fallback(c, http.StatusServiceUnavailable)
		return
	}
	etag := `"` + doc.Checksum() + `"`
	c.Header("ETag", etag)
	if c.GetHeader("If-None-Match") == etag {
		c.Status(http.StatusNotModified)
		return
	}

	ctx := c.Request.Context()
	if page, ok := a.pages.Get(ctx, doc.Checksum()); ok {
		c.Header("X-Page-Cache", "hit")
		c.Data(http.StatusOK, htmlContentType, page)
		return
	}

	var buf bytes.Buffer
	if err := a.renderer.Page(&buf, render.BuildPage(doc)); err != nil {
		_ = c.Error(err)
		log.WithError(err).Error("render page")
		a.fallback(c, http.StatusInternalServerError)
		return
	}
	a.pages.Set(ctx, doc.Checksum(), buf.Bytes())
	c.Data(http.StatusOK, htmlContentType, buf.Bytes())
}

func (a *app) fallback(c *gin.Context, status int) {
	var buf bytes.Buffer
	if err := a.renderer.Fallback(&buf, loadFailedMessage); err != nil {
		c.String(http.StatusInternalServerError, loadFailedMessage)
		return
	}
	c.Data(status, htmlContentType, buf.Bytes())
}

// documentJSON serves the document the page was rendered from.
func (a *app) documentJSON(c *gin.Context) {
	doc, ok := a.docs.Current()
	if !ok {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": loadFailedMessage})
		return
	}
	c.Header("ETag", `"`+doc.Checksum()+`"`)
	c.Data(http.StatusOK, "application/json; charset=utf-8", doc.Raw())
}
