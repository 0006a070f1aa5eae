package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	_ "github.com/go-sql-driver/mysql"

	"github.com/kitout3/emargement-qr-app/internal/checkin"
	"github.com/kitout3/emargement-qr-app/internal/platform/db"
	"github.com/kitout3/emargement-qr-app/internal/roster"
)

func main() {
	// 設定読み込み
	cfg, err := db.LoadConfig("config/config.yaml")
	if err != nil {
		panic(err)
	}

	// 動作モード取得
	mode := cfg.Mode
	log.Printf("[INFO] mode:%s\n", mode)

	if mode != "dev" && mode != "release" {
		fmt.Println("Usage: go run main.go [dev|release]")
		return
	}

	// スナップショット保存先の組み立て
	blob, cleanup, err := newBlobStore(cfg)
	if err != nil {
		panic(err)
	}
	defer cleanup()

	ledger := checkin.NewService(checkin.NewSnapshotStore(blob))
	ledger.Load(context.Background())

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	_ = r.SetTrustedProxies(nil)

	if mode == "dev" {
		// CORS（開発中のフロントからのみ必要）
		r.Use(cors.New(cors.Config{
			AllowOrigins:     []string{"http://localhost:5173"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowCredentials: true,
		}))
	}

	// ヘルス
	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	// /api/v1
	api := r.Group("/api/v1")
	checkin.RegisterRoutes(api, ledger)
	roster.RegisterRoutes(api, roster.NewService(ledger))

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: r,
	}

	go func() {
		log.Printf("[INFO] listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit
	log.Println("[INFO] shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal(err)
	}
	ledger.Flush(ctx)
}

// newBlobStore: 設定に応じて file / mysql のどちらかのblobストアを返す。
func newBlobStore(cfg *db.Config) (checkin.BlobStore, func(), error) {
	switch cfg.Storage.Driver {
	case db.StorageDriverFile:
		log.Printf("[INFO] snapshot storage: file (%s)", cfg.Storage.Path)
		return checkin.NewFileBlobStore(cfg.Storage.Path), func() {}, nil

	case db.StorageDriverMySQL:
		conn, err := db.Connect(cfg.DB)
		if err != nil {
			return nil, nil, err
		}
		log.Printf("[INFO] snapshot storage: mysql (%s)", cfg.DB.DBName)

		store := checkin.NewMySQLBlobStore(conn)
		if err := store.EnsureSchema(context.Background()); err != nil {
			conn.Close()
			return nil, nil, err
		}
		return store, func() { conn.Close() }, nil
	}
	return nil, nil, fmt.Errorf("unknown storage driver: %q", cfg.Storage.Driver)
}
