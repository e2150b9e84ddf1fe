package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"gorm.io/driver/postgres"
	"gorm.io/gen"
	"gorm.io/gorm"
)

func main() {
	var dsn, out string
	var tables []string
	flag.StringVar(&dsn, "dsn", os.Getenv("SNOWVIZ_DB_DSN"), "postgres dsn")
	flag.StringVar(&out, "out", "internal/adapter/repo/gorm/model", "output dir for generated models")
	flag.Func("table", "table to generate (repeatable, default runs and run_action_errors)", func(v string) error {
		tables = append(tables, v)
		return nil
	})
	flag.Parse()
	if len(tables) == 0 {
		tables = []string{"runs", "run_action_errors"}
	}

	if dsn == "" {
		log.Fatal("missing --dsn or SNOWVIZ_DB_DSN")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("open postgres: %v", err)
	}

	g := gen.NewGenerator(gen.Config{
		OutPath:      out,
		ModelPkgPath: "model",
		Mode:         gen.WithoutContext,
	})
	g.UseDB(db)
	models := make([]any, 0, len(tables))
	for _, table := range tables {
		models = append(models, g.GenerateModel(table))
	}
	g.ApplyBasic(models...)
	g.Execute()

	fmt.Printf("generated gorm models for %v at %s\n", tables, out)
}
