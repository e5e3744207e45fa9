package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"

	"github.com/locvowork/tablexcel/internal/bootstrap"
	"github.com/locvowork/tablexcel/internal/config"
	"github.com/locvowork/tablexcel/internal/database"
	"github.com/locvowork/tablexcel/internal/logger"
)

func main() {
	// Define flags
	action := flag.String("action", "seed", "Action to perform: seed, clear")
	preset := flag.String("preset", "medium", "Data preset: small, medium, large, xlarge")
	employees := flag.Int("employees", 0, "Number of employees (overrides preset)")
	firstYear := flag.Int("first-year", 0, "First hire year (default REPORT_FIRST_YEAR)")
	lastYear := flag.Int("last-year", 0, "Last salary year (default REPORT_LAST_YEAR)")

	flag.Parse()

	ctx := context.Background()

	fmt.Println("🚀 Employee Data Seeder")
	fmt.Println(strings.Repeat("=", 50))

	// Initialize app
	fmt.Println("📡 Initializing application...")
	app := bootstrap.NewApp()
	if err := app.Initialize(ctx); err != nil {
		logger.ErrorLog(ctx, "Failed to initialize application", err)
		log.Fatal(err)
	}
	defer app.Close()

	seeder := database.NewDataSeeder(app.DB)

	// Execute action
	switch *action {
	case "seed":
		first, last := *firstYear, *lastYear
		if first == 0 {
			first = config.DefaultEnvConfig.REPORT_FIRST_YEAR
		}
		if last == 0 {
			last = config.DefaultEnvConfig.REPORT_LAST_YEAR
		}
		performSeed(ctx, seeder, *preset, *employees, first, last)

	case "clear":
		performClear(ctx, seeder)

	default:
		fmt.Printf("❌ Unknown action: %s\n", *action)
		flag.PrintDefaults()
	}

	fmt.Println("\n✅ Done!")
}

func performSeed(ctx context.Context, seeder *database.DataSeeder, preset string, employees, firstYear, lastYear int) {
	n := employees
	if n > 0 {
		fmt.Printf("📊 Using custom configuration: %d employees\n", n)
	} else {
		n = database.GetPresetConfig(database.SeedPreset(preset))
		fmt.Printf("📊 Using preset: %s (%d employees)\n", preset, n)
	}

	if err := seeder.SeedData(ctx, n, firstYear, lastYear); err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}
}

func performClear(ctx context.Context, seeder *database.DataSeeder) {
	fmt.Println("⚠️  This will delete all seeded data!")
	fmt.Print("Continue? (yes/no): ")

	var response string
	fmt.Scanln(&response)

	if response == "yes" {
		if err := seeder.ClearData(ctx); err != nil {
			log.Fatalf("❌ Clear failed: %v", err)
		}
	} else {
		fmt.Println("Cancelled.")
	}
}
