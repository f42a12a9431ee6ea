package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/ratethestore/ratethestore-backend/config"
	"github.com/ratethestore/ratethestore-backend/internal/app/repository"
	"github.com/ratethestore/ratethestore-backend/internal/db"
	"github.com/ratethestore/ratethestore-backend/internal/importer"
	"github.com/ratethestore/ratethestore-backend/pkg/logger"
)

func main() {
	yes := flag.Bool("y", false, "import without asking for confirmation")
	batchSize := flag.Int("batch", importer.DefaultBatchSize, "rows per insert batch")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: seed [-y] [-batch n] <stores.xlsx>")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	filePath := flag.Arg(0)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}
	logger.Initialize(logger.Config{
		Level:       cfg.Log.Level,
		Format:      "console",
		EnableColor: true,
	})

	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to connect to database", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	file, err := os.Open(filePath)
	if err != nil {
		logger.Fatal("Failed to open XLSX file", err, map[string]interface{}{
			"path": filePath,
		})
	}
	defer file.Close()

	rows, err := importer.ReadStoreRows(file)
	if err != nil {
		logger.Fatal("Failed to read XLSX", err)
	}

	im := importer.NewImporter(
		repository.NewUserRepository(db.GetDB()),
		repository.NewStoreRepository(db.GetDB()),
		*batchSize,
	)
	stores, skipped, err := im.Plan(rows)
	if err != nil {
		logger.Fatal("Failed to plan import", err)
	}
	for _, rowErr := range skipped {
		fmt.Printf("Skipping %s\n", rowErr.Error())
	}
	fmt.Printf("Rows read: %d, stores to import: %d, skipped: %d\n", len(rows), len(stores), len(skipped))

	if len(stores) == 0 {
		fmt.Println("Nothing to import.")
		return
	}

	if !*yes && !confirm("Do you want to proceed with the import? (yes/no): ") {
		fmt.Println("Import cancelled.")
		return
	}

	if err := im.Import(stores); err != nil {
		logger.Fatal("Failed to import stores", err)
	}
	fmt.Printf("Import completed: %d stores\n", len(stores))
}

func confirm(prompt string) bool {
	fmt.Print(prompt)
	answer, _ := bufio.NewReader(os.Stdin).ReadString('\n')
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "yes" || answer == "y"
}
