package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"artdb/proj/internal/lib/logger"
	"artdb/proj/internal/storage/postgres"
)

// loadcsv is a one-shot importer for the legacy CSV dumps
// (category.csv, genre.csv, titles.csv, review.csv, comments.csv).
// Rows referencing a missing foreign key are skipped, not fatal.

type fileLoader struct {
	name string
	load func(ctx context.Context, db postgres.Querier, record []string) (skipped bool, err error)
}

var loaders = []fileLoader{
	{"category.csv", loadCategory},
	{"genre.csv", loadGenre},
	{"titles.csv", loadTitle},
	{"review.csv", loadReview},
	{"comments.csv", loadComment},
}

func main() {
	dsn := flag.String("dsn", os.Getenv("DB_DSN"), "postgres connection string")
	dir := flag.String("dir", ".", "directory containing the csv files")
	flag.Parse()

	log := logger.SetupLogger(true)
	if *dsn == "" {
		log.Error("no -dsn given and DB_DSN is empty")
		os.Exit(1)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	storage, err := postgres.New(ctx, *dsn, 5, time.Minute)
	cancel()
	if err != nil {
		log.Error("connecting to database", "errMsg", err.Error())
		os.Exit(1)
	}
	defer storage.Conn.Close()

	exitCode := 0
	for _, loader := range loaders {
		path := filepath.Join(*dir, loader.name)
		inserted, skipped, err := loadFile(context.Background(), storage.Conn, path, loader)
		if err != nil {
			log.Error("import failed", "file", loader.name, "errMsg", err.Error())
			exitCode = 1
			continue
		}
		log.Info("file imported", "file", loader.name, "inserted", inserted, "skipped", skipped)
	}
	if exitCode == 0 {
		if err := resetSequences(context.Background(), storage.Conn); err != nil {
			log.Error("resetting id sequences", "errMsg", err.Error())
			exitCode = 1
		}
	}
	os.Exit(exitCode)
}

func loadFile(ctx context.Context, db postgres.Querier, path string, loader fileLoader) (inserted, skipped int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	if _, err := reader.Read(); err != nil { // header
		return 0, 0, fmt.Errorf("reading header: %w", err)
	}
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return inserted, skipped, fmt.Errorf("line %d: %w", line, err)
		}
		wasSkipped, err := loader.load(ctx, db, record)
		if err != nil {
			return inserted, skipped, fmt.Errorf("line %d: %w", line, err)
		}
		if wasSkipped {
			skipped++
			continue
		}
		inserted++
	}
	return inserted, skipped, nil
}

func parseID(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}

func rowExists(ctx context.Context, db postgres.Querier, table string, id int64) (bool, error) {
	var exists bool
	err := db.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM "+table+" WHERE id = $1)", id).Scan(&exists)
	return exists, err
}

// category.csv: id,name,slug
func loadCategory(ctx context.Context, db postgres.Querier, record []string) (bool, error) {
	if len(record) < 3 {
		return true, nil
	}
	id, err := parseID(record[0])
	if err != nil {
		return true, nil
	}
	_, err = db.Exec(
		ctx,
		"INSERT INTO categories (id, name, slug) OVERRIDING SYSTEM VALUE VALUES ($1, $2, $3) ON CONFLICT DO NOTHING",
		id, record[1], record[2],
	)
	return false, err
}

// genre.csv: id,name,slug
func loadGenre(ctx context.Context, db postgres.Querier, record []string) (bool, error) {
	if len(record) < 3 {
		return true, nil
	}
	id, err := parseID(record[0])
	if err != nil {
		return true, nil
	}
	_, err = db.Exec(
		ctx,
		"INSERT INTO genres (id, name, slug) OVERRIDING SYSTEM VALUE VALUES ($1, $2, $3) ON CONFLICT DO NOTHING",
		id, record[1], record[2],
	)
	return false, err
}

// titles.csv: id,name,year,category
func loadTitle(ctx context.Context, db postgres.Querier, record []string) (bool, error) {
	if len(record) < 4 {
		return true, nil
	}
	id, err := parseID(record[0])
	if err != nil {
		return true, nil
	}
	year, err := strconv.ParseInt(record[2], 10, 32)
	if err != nil {
		return true, nil
	}
	categoryID, err := parseID(record[3])
	if err != nil {
		return true, nil
	}
	exists, err := rowExists(ctx, db, "categories", categoryID)
	if err != nil {
		return false, err
	}
	if !exists {
		return true, nil
	}
	_, err = db.Exec(
		ctx,
		"INSERT INTO titles (id, name, year, category_id) OVERRIDING SYSTEM VALUE VALUES ($1, $2, $3, $4) ON CONFLICT DO NOTHING",
		id, record[1], int32(year), categoryID,
	)
	return false, err
}

// review.csv: id,title_id,text,author,score,pub_date
func loadReview(ctx context.Context, db postgres.Querier, record []string) (bool, error) {
	if len(record) < 6 {
		return true, nil
	}
	id, err := parseID(record[0])
	if err != nil {
		return true, nil
	}
	titleID, err := parseID(record[1])
	if err != nil {
		return true, nil
	}
	authorID, err := parseID(record[3])
	if err != nil {
		return true, nil
	}
	score, err := strconv.ParseInt(record[4], 10, 32)
	if err != nil {
		return true, nil
	}
	for _, ref := range []struct {
		table string
		id    int64
	}{{"titles", titleID}, {"users", authorID}} {
		exists, err := rowExists(ctx, db, ref.table, ref.id)
		if err != nil {
			return false, err
		}
		if !exists {
			return true, nil
		}
	}
	_, err = db.Exec(
		ctx,
		`INSERT INTO reviews (id, title_id, author_id, text, score, pub_date) OVERRIDING SYSTEM VALUE
		VALUES ($1, $2, $3, $4, $5, $6) ON CONFLICT DO NOTHING`,
		id, titleID, authorID, record[2], int32(score), record[5],
	)
	return false, err
}

// comments.csv: id,review_id,text,author,pub_date
func loadComment(ctx context.Context, db postgres.Querier, record []string) (bool, error) {
	if len(record) < 5 {
		return true, nil
	}
	id, err := parseID(record[0])
	if err != nil {
		return true, nil
	}
	reviewID, err := parseID(record[1])
	if err != nil {
		return true, nil
	}
	authorID, err := parseID(record[3])
	if err != nil {
		return true, nil
	}
	for _, ref := range []struct {
		table string
		id    int64
	}{{"reviews", reviewID}, {"users", authorID}} {
		exists, err := rowExists(ctx, db, ref.table, ref.id)
		if err != nil {
			return false, err
		}
		if !exists {
			return true, nil
		}
	}
	_, err = db.Exec(
		ctx,
		`INSERT INTO comments (id, review_id, author_id, text, pub_date) OVERRIDING SYSTEM VALUE
		VALUES ($1, $2, $3, $4, $5) ON CONFLICT DO NOTHING`,
		id, reviewID, authorID, record[2], record[4],
	)
	return false, err
}

// resetSequences moves the id sequences past the imported ids so the API can
// keep inserting.
func resetSequences(ctx context.Context, db postgres.Querier) error {
	for _, table := range []string{"categories", "genres", "titles", "reviews", "comments"} {
		_, err := db.Exec(
			ctx,
			fmt.Sprintf(
				"SELECT setval(pg_get_serial_sequence('%[1]s', 'id'), (SELECT COALESCE(max(id), 1) FROM %[1]s))",
				table,
			),
		)
		if err != nil {
			return fmt.Errorf("table %s: %w", table, err)
		}
	}
	return nil
}
