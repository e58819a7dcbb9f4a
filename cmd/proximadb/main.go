// Command proximadb is a small CLI front-end over the embeddable vector
// database: build and save a collection of random records, run
// nearest-neighbor searches against a collection persisted in a
// directory-backed store.Database, and print its basic stats.
package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/proximadb/proximadb/pkg/collection"
	"github.com/proximadb/proximadb/pkg/config"
	"github.com/proximadb/proximadb/pkg/record"
	"github.com/proximadb/proximadb/pkg/store"
	"github.com/proximadb/proximadb/pkg/vector"
)

var (
	dbPath   string
	collName string
	distance string
)

var rootCmd = &cobra.Command{
	Use:   "proximadb",
	Short: "CLI for the proximadb embeddable vector database",
}

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Build a collection of random records, save it, then search it",
	RunE: func(cmd *cobra.Command, args []string) error {
		dimension, _ := cmd.Flags().GetInt("dimension")
		count, _ := cmd.Flags().GetInt("count")
		k, _ := cmd.Flags().GetInt("k")

		db, err := store.New(dbPath)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}

		cfg, err := config.New(config.Default().EfConstruction, config.Default().EfSearch, config.Default().Ml, vector.Metric(distance))
		if err != nil {
			return fmt.Errorf("build config: %w", err)
		}

		records := record.ManyRandom(dimension, count)
		coll, err := collection.FromRecords(cfg, records)
		if err != nil {
			return fmt.Errorf("build collection: %w", err)
		}

		if err := db.SaveCollection(collName, coll); err != nil {
			return fmt.Errorf("save collection: %w", err)
		}

		query := vector.Random(dimension)
		results, err := coll.Search(query, k)
		if err != nil {
			return fmt.Errorf("search: %w", err)
		}
		if len(results) == 0 {
			fmt.Println("no results")
			return nil
		}

		fmt.Printf("Nearest neighbor ID: %d (distance %.6f)\n", results[0].ID, results[0].Distance)
		return nil
	},
}

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search a saved collection for the nearest neighbors of a vector",
	RunE: func(cmd *cobra.Command, args []string) error {
		queryStr, _ := cmd.Flags().GetString("vector")
		k, _ := cmd.Flags().GetInt("k")
		exact, _ := cmd.Flags().GetBool("exact")

		query, err := parseVector(queryStr)
		if err != nil {
			return err
		}

		db, err := store.New(dbPath)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		coll, err := db.GetCollection(collName)
		if err != nil {
			return fmt.Errorf("load collection %q: %w", collName, err)
		}

		var results []collection.SearchResult
		if exact {
			results, err = coll.TrueSearch(query, k)
		} else {
			results, err = coll.Search(query, k)
		}
		if err != nil {
			return fmt.Errorf("search: %w", err)
		}

		for i, r := range results {
			fmt.Printf("%d. id=%d distance=%.6f\n", i+1, r.ID, r.Distance)
		}
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print basic stats about a saved collection",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := store.New(dbPath)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		coll, err := db.GetCollection(collName)
		if err != nil {
			return fmt.Errorf("load collection %q: %w", collName, err)
		}

		fmt.Printf("Collection:  %s\n", collName)
		fmt.Printf("Records:     %d\n", coll.Len())
		fmt.Printf("Dimension:   %d\n", coll.Dimension())
		return nil
	},
}

func parseVector(s string) (vector.Vector, error) {
	if s == "" {
		return nil, fmt.Errorf("--vector is required")
	}
	parts := strings.Split(s, ",")
	values := make([]float32, len(parts))
	for i, part := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 32)
		if err != nil {
			return nil, fmt.Errorf("invalid vector component %q: %w", part, err)
		}
		values[i] = float32(f)
	}
	return vector.New(values), nil
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "data/proximadb", "database directory path")
	rootCmd.PersistentFlags().StringVarP(&collName, "collection", "c", "default", "collection name")
	rootCmd.PersistentFlags().StringVar(&distance, "distance", "euclidean", "distance metric (euclidean|cosine)")

	demoCmd.Flags().Int("dimension", 128, "vector dimension for the generated records")
	demoCmd.Flags().Int("count", 100, "number of random records to generate")
	demoCmd.Flags().Int("k", 5, "number of nearest neighbors to search for (only the closest is printed)")

	searchCmd.Flags().String("vector", "", "query vector, comma-separated floats (required)")
	searchCmd.Flags().Int("k", 10, "number of nearest neighbors to return")
	searchCmd.Flags().Bool("exact", false, "run an exhaustive true_search instead of the ANN search")
	searchCmd.MarkFlagRequired("vector")

	rootCmd.AddCommand(demoCmd, searchCmd, statsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
