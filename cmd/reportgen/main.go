package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/locvowork/tablexcel/internal/bootstrap"
	"github.com/locvowork/tablexcel/internal/config"
	"github.com/locvowork/tablexcel/internal/domain"
	"github.com/locvowork/tablexcel/internal/logger"
)

func main() {
	output := flag.String("output", "", "Output workbook path (default REPORT_OUTPUT_PATH)")
	force := flag.Bool("force", false, "Delete and recreate the workbook instead of updating it")
	dept := flag.String("dept", "", "Only employees currently in this department, e.g. d005")
	limit := flag.Int("limit", 0, "Maximum number of employees (0 = all)")

	flag.Parse()

	ctx := context.Background()

	fmt.Println("📊 Salary Report Generator")
	fmt.Println(strings.Repeat("=", 50))

	app := bootstrap.NewApp()
	if err := app.Initialize(ctx); err != nil {
		logger.ErrorLog(ctx, "Failed to initialize application", err)
		log.Fatal(err)
	}
	defer app.Close()

	path := *output
	if path == "" {
		path = config.DefaultEnvConfig.REPORT_OUTPUT_PATH
	}
	recreate := *force || config.DefaultEnvConfig.REPORT_FORCE_RECREATE

	filter := domain.EmployeeFilter{DeptNo: *dept, Limit: *limit}
	result, err := app.Reports.Export(ctx, filter, path, recreate)
	if err != nil {
		logger.ErrorLog(ctx, "Export failed", err)
		fmt.Printf("❌ Export failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✅ Exported %d employees to %s (run %s)\n", result.Employees, result.Path, result.RunID)
	if len(result.Issues) > 0 {
		fmt.Printf("⚠️  %d items were skipped:\n", len(result.Issues))
		for _, issue := range result.Issues {
			fmt.Println("   -", issue.Error())
		}
	}
}
