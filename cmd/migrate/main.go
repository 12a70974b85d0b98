package main

import (
	"flag"
	"log"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/campusloop/campusloop-backend/internal/config"
	"github.com/campusloop/campusloop-backend/internal/database"
	"github.com/campusloop/campusloop-backend/internal/migration"
	"github.com/joho/godotenv"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "configs/config.local.yaml", "config file path")
	target := flag.String("target", migration.TargetAll, "migration target: all, users, products, kv (comma separated)")
	dryRun := flag.Bool("dry-run", false, "show what would be migrated without executing")
	verify := flag.Bool("verify", false, "print row counts per table")
	rollback := flag.Bool("rollback", false, "drop the target tables")
	verbose := flag.Bool("verbose", false, "verbose SQL logging")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logLevel := gormlogger.Warn
	if *verbose {
		logLevel = gormlogger.Info
	}

	db, err := database.Open(cfg.Database, logLevel)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to get underlying DB: %v", err)
	}
	defer sqlDB.Close()

	targets := parseTargets(*target)

	switch {
	case *dryRun:
		log.Printf("[dry-run] Would migrate %v on %s", targets, cfg.Database.Driver)
	case *verify:
		runVerify(db)
	case *rollback:
		runEach(db, targets, "rollback", migration.Rollback)
	default:
		runEach(db, targets, "migrate", migration.RunTarget)
	}
}

func runEach(db *gorm.DB, targets []string, verb string, fn func(*gorm.DB, string) error) {
	start := time.Now()
	for _, t := range targets {
		log.Printf("[%s] Starting: %s", verb, t)
		if err := fn(db, t); err != nil {
			log.Printf("[%s] FAILED %s: %v", verb, t, err)
			os.Exit(1)
		}
	}
	log.Printf("[%s] Completed %v in %v", verb, targets, time.Since(start))
}

func runVerify(db *gorm.DB) {
	counts, err := migration.Counts(db)
	if err != nil {
		log.Fatalf("[verify] %v", err)
	}
	tables := make([]string, 0, len(counts))
	for t := range counts {
		tables = append(tables, t)
	}
	sort.Strings(tables)
	for _, t := range tables {
		log.Printf("[verify] %-12s %d rows", t, counts[t])
	}
}

func parseTargets(target string) []string {
	var targets []string
	for _, t := range strings.Split(target, ",") {
		if t = strings.TrimSpace(t); t != "" {
			targets = append(targets, t)
		}
	}
	if len(targets) == 0 {
		return []string{migration.TargetAll}
	}
	return targets
}
