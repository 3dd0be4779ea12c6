package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"cafesync/internal/api"
	"cafesync/internal/cache"
	"cafesync/internal/catalog"
	"cafesync/internal/config"
	"cafesync/internal/db"
	"cafesync/internal/reconcile"
	"cafesync/internal/region"
	"cafesync/internal/repository"
	"cafesync/internal/store"
)

func main() {
	cfg := config.Load()

	// Sem credenciais do store o /sync não funciona: falha logo na subida
	if err := cfg.RequireStore(); err != nil {
		log.Fatalf("Configuração inválida: %v", err)
	}

	rf, err := config.ReadRegions(cfg.RegionsFile)
	if err != nil {
		log.Fatalf("Erro ao ler regiões: %v", err)
	}
	regions := region.NewStore(cfg.DataDir, rf)

	holder, err := catalog.NewHolder(catalog.FromRegions(regions))
	if err != nil {
		log.Fatalf("Erro ao carregar catálogo: %v", err)
	}

	ctx := context.Background()
	st, closeStore, err := store.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("Erro ao abrir store: %v", err)
	}
	defer closeStore()

	rec := reconcile.New(st)
	if cfg.DatabaseURL != "" {
		conn, err := db.New(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Erro ao conectar no banco de dados (db): %v", err)
		}
		defer conn.Close()
		runs := &repository.RunRepository{DB: conn}
		if err := runs.EnsureSchema(ctx); err != nil {
			log.Printf("[API] Histórico de sync desativado: %v", err)
		} else {
			rec.Recorder = runs
		}
	}

	srv := &api.Server{Catalog: holder, Syncer: rec}
	if cfg.RedisURL != "" {
		srv.Cache = cache.New(cfg.RedisURL, cfg.SearchCacheTTL)
	}

	// SIGHUP recarrega os arquivos sem reiniciar
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	go func() {
		for range hup {
			if _, err := holder.Reload(); err != nil {
				log.Printf("[API] Erro ao recarregar: %v", err)
			}
		}
	}()

	gin.SetMode(gin.ReleaseMode)
	httpSrv := &http.Server{
		Addr:    ":" + cfg.APIPort,
		Handler: srv.Router(),
	}

	go func() {
		log.Printf("API de cafés rodando :%s", cfg.APIPort)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Erro no servidor: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Erro ao encerrar servidor: %v", err)
	}
	log.Println("API finalizada")
}
