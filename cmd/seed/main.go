package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/DiscordantST/document-bot/internal/config"
	"github.com/DiscordantST/document-bot/internal/domain/services"
	"github.com/DiscordantST/document-bot/internal/repository/postgres"
	"github.com/DiscordantST/document-bot/internal/service"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func main() {
	// Parse command-line flags
	chatID := flag.Int64("chat-id", 0, "Telegram user ID that owns the demo data")
	dropTables := flag.Bool("drop-tables", false, "Drop all tables before seeding (fresh start)")
	schemaOnly := flag.Bool("schema-only", false, "Only set up schema, don't seed documents")
	clearData := flag.Bool("clear-data", false, "Clear the demo user's documents and templates (keep schema)")
	flag.Parse()

	// Load .env file
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// SAFETY: Prevent destructive operations in production
	if cfg.Environment == "prod" && (*dropTables || *clearData) {
		log.Fatalf("🚫 BLOCKED: Cannot run destructive operations (--drop-tables or --clear-data) in production environment")
	}

	// Setup logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	if *clearData {
		log.Printf("🧹 Clearing data only (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)
	} else if *schemaOnly {
		log.Printf("🏗️  Setting up schema only (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)
	} else {
		log.Printf("🌱 Seeding database (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)
	}

	// Create database connection pool
	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	// Create table names
	tables := postgres.NewTableNames(cfg.TablePrefix)

	// Drop tables if requested
	if *dropTables {
		log.Println("🗑️  Dropping all tables...")
		if err := dropAllTables(ctx, pool, tables); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
		log.Println("✅ Tables dropped")
	}

	// Run schema to ensure tables exist
	log.Println("📋 Ensuring database schema is up to date...")
	if err := postgres.Migrate(ctx, pool, tables, logger); err != nil {
		log.Fatalf("Failed to run schema: %v", err)
	}
	log.Println("✅ Schema ready")

	// Exit early if schema-only mode
	if *schemaOnly {
		log.Println("✅ Schema setup complete (schema-only mode)")
		return
	}

	// Everything below writes rows owned by a concrete Telegram user
	if *chatID <= 0 {
		log.Fatalf("--chat-id is required to seed or clear data (your numeric Telegram user ID)")
	}

	// Exit early if clear-data mode (just clear and exit)
	if *clearData {
		log.Println("🧹 Clearing existing documents and templates...")
		if err := clearUserData(ctx, pool, tables, *chatID); err != nil {
			log.Fatalf("Failed to clear data: %v", err)
		}
		log.Println("✅ Data cleared successfully")
		return
	}

	// Create repositories
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	userRepo := postgres.NewUserRepository(repoConfig)
	docRepo := postgres.NewDocumentRepository(repoConfig)
	tmplRepo := postgres.NewTemplateRepository(repoConfig)
	reminderRepo := postgres.NewReminderRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool, logger)

	// Create services
	userService := service.NewUserService(userRepo, logger)
	docService := service.NewDocumentService(docRepo, reminderRepo, txManager, cfg, logger)
	tmplService := service.NewTemplateService(tmplRepo, docRepo, txManager, cfg, logger)

	// Register the demo user
	if _, err := userService.RegisterUser(ctx, *chatID, "", "Demo"); err != nil {
		log.Fatalf("Failed to register demo user: %v", err)
	}

	// Clear existing data so reruns stay deterministic
	log.Println("⚠️  Clearing existing documents and templates...")
	if err := clearUserData(ctx, pool, tables, *chatID); err != nil {
		log.Printf("Warning: Could not clear data: %v", err)
	}

	// Seed templates
	log.Println("📁 Seeding templates...")
	templateIDs := make(map[string]*int64)
	for _, name := range []string{"Personal", "Insurance", "Work"} {
		tmpl, err := tmplService.CreateTemplate(ctx, &services.CreateTemplateRequest{
			OwnerID: *chatID,
			Name:    name,
		})
		if err != nil {
			log.Fatalf("Failed to create template '%s': %v", name, err)
		}
		id := tmpl.ID
		templateIDs[name] = &id
		log.Printf("✅ Created template: %s (ID: %d)", name, id)
	}

	// Seed documents across every expiry tier
	log.Println("📝 Seeding documents...")

	documents := getSeedDocuments()
	today := time.Now()

	for i, d := range documents {
		req := &services.UploadDocumentRequest{
			OwnerID:  *chatID,
			Name:     d.name,
			FileID:   fmt.Sprintf("SEED_FILE_%d", i+1),
			FileName: d.fileName,
			Notes:    d.notes,
		}
		if d.startAgo != nil {
			start := today.AddDate(0, 0, -*d.startAgo)
			req.StartDate = &start
		}
		if d.endIn != nil {
			end := today.AddDate(0, 0, *d.endIn)
			req.EndDate = &end
		}
		if d.template != "" {
			req.TemplateID = templateIDs[d.template]
		}

		doc, err := docService.UploadDocument(ctx, req)
		if err != nil {
			log.Printf("❌ Failed to create document '%s': %v", d.name, err)
			continue
		}

		log.Printf("✅ Created document %d/%d: %s (ID: %d)", i+1, len(documents), d.name, doc.ID)
	}

	log.Println("🎉 Seeding complete!")
}

// seedDoc describes one demo document relative to today.
type seedDoc struct {
	name     string
	fileName string
	template string
	startAgo *int // days before today the validity started
	endIn    *int // days from today it expires, nil for open-ended
	notes    string
}

func days(n int) *int { return &n }

// getSeedDocuments covers every status tier the bot renders: expired,
// expiring today/tomorrow/within a week/within a month, long-valid and
// undated. File IDs are placeholders, so the download button will get a
// rejection toast for seeded entries.
func getSeedDocuments() []seedDoc {
	return []seedDoc{
		{name: "Passport", fileName: "passport.pdf", template: "Personal", startAgo: days(3650), endIn: days(200), notes: "Kept in the top drawer"},
		{name: "Driving licence", fileName: "licence.jpg", template: "Personal", startAgo: days(1200), endIn: days(25)},
		{name: "Health insurance", fileName: "health_policy.pdf", template: "Insurance", startAgo: days(340), endIn: days(5)},
		{name: "Car insurance", fileName: "car_policy.pdf", template: "Insurance", startAgo: days(364), endIn: days(1)},
		{name: "Travel insurance", fileName: "travel.pdf", template: "Insurance", startAgo: days(7), endIn: days(0)},
		{name: "Gym membership", fileName: "gym.pdf", startAgo: days(400), endIn: days(-12), notes: "Renew or cancel"},
		{name: "Office lease", fileName: "lease.pdf", template: "Work", startAgo: days(90), endIn: days(275)},
		{name: "Birth certificate", fileName: "birth_cert.pdf", template: "Personal"},
	}
}

// clearUserData removes the user's documents (reminder records cascade)
// and templates.
func clearUserData(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames, ownerID int64) error {
	if _, err := pool.Exec(ctx, `DELETE FROM `+tables.Documents+` WHERE owner_id = $1`, ownerID); err != nil {
		return err
	}
	_, err := pool.Exec(ctx, `DELETE FROM `+tables.Templates+` WHERE owner_id = $1`, ownerID)
	return err
}

// dropAllTables drops the bot's tables in FK order.
func dropAllTables(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames) error {
	stmts := []string{
		`DROP TABLE IF EXISTS ` + tables.RemindersSent + ` CASCADE`,
		`DROP TABLE IF EXISTS ` + tables.Documents + ` CASCADE`,
		`DROP TABLE IF EXISTS ` + tables.Templates + ` CASCADE`,
		`DROP TABLE IF EXISTS ` + tables.Users + ` CASCADE`,
	}
	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
