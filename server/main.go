package main

import (
	"context"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"uno-arbiter/server/session"
	"uno-arbiter/server/store"
)

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func atoiDef(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func asBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "y", "on":
		return true
	default:
		return false
	}
}

func newLogger() *logrus.Logger {
	log := logrus.New()
	if lvl, err := logrus.ParseLevel(getenv("LOG_LEVEL", "info")); err == nil {
		log.SetLevel(lvl)
	}
	return log
}

func main() {
	_ = godotenv.Load()
	log := newLogger()

	var migrate, demo bool
	for _, a := range os.Args[1:] {
		switch a {
		case "--migrate":
			migrate = true
		case "--demo":
			demo = true
		}
	}

	if demo {
		runDemo(log)
		return
	}

	// Decision audit log is optional: no DATABASE_URL, no logging, service
	// still fully functional.
	var db *store.DB
	if dsn := getenv("DATABASE_URL", ""); dsn != "" {
		p, err := store.Open(dsn)
		if err != nil {
			log.WithError(err).Warn("DB disabled (open failed)")
		} else {
			db = p
			defer db.Close(context.Background())
			if migrate || asBool(os.Getenv("AUTO_MIGRATE")) {
				if err := store.Migrate(context.Background(), db); err != nil {
					if migrate {
						log.WithError(err).Fatal("migrate failed")
					}
					log.WithError(err).Warn("migrate failed (continuing without DB)")
					db = nil
				} else {
					log.Info("migrated")
				}
			}
			if migrate {
				return
			}
		}
	} else if migrate {
		log.Fatal("--migrate requires DATABASE_URL")
	}

	// Sessions live in memory unless a Redis address is configured.
	var sessions session.Store = session.NewMemoryStore()
	if addr := getenv("REDIS_ADDR", ""); addr != "" {
		ttl := time.Duration(atoiDef(os.Getenv("SESSION_TTL_SECONDS"), 0)) * time.Second
		rs, err := session.NewRedisStore(addr, atoiDef(os.Getenv("REDIS_DB"), 0), ttl)
		if err != nil {
			log.WithError(err).Fatal("redis session store unavailable")
		}
		sessions = rs
		log.WithField("addr", addr).Info("using redis session store")
	}

	srv := newServer(log, sessions, db)
	port := getenv("PORT", "8000")
	httpSrv := &http.Server{
		Addr:         ":" + port,
		Handler:      srv.routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second, // decisions may spend up to budget LLM calls
	}
	log.WithField("port", port).Info("listening")
	log.Fatal(httpSrv.ListenAndServe())
}
