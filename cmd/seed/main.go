// Command seed loads jobs and skills from a JSON file. Jobs are not writable
// through the API, so this is how listings reach the database.
//
//	go run ./cmd/seed -file scripts/seed_data.json
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"fursa-backend/config"
	"fursa-backend/internal/domain"
	"fursa-backend/internal/repository/postgres"
	"fursa-backend/pkg/apperror"
	"fursa-backend/pkg/database"
	"fursa-backend/pkg/logger"
)

type seedFile struct {
	Skills []string     `json:"skills"`
	Jobs   []domain.Job `json:"jobs"`
}

type seeder struct {
	jobs   domain.JobRepository
	skills domain.SkillRepository
}

type seedResult struct {
	SkillsCreated int
	SkillsSkipped int
	JobsCreated   int
	JobsSkipped   int
}

func main() {
	path := flag.String("file", "scripts/seed_data.json", "seed data file")
	migrate := flag.Bool("migrate", true, "apply migrations before seeding")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	logger.Init(cfg.LogLevel)

	f, err := os.Open(*path)
	if err != nil {
		logger.Log.Error("Failed to open seed file", "file", *path, "error", err)
		os.Exit(1)
	}
	data, err := parseSeedFile(f)
	f.Close()
	if err != nil {
		logger.Log.Error("Invalid seed file", "file", *path, "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	if *migrate {
		if err := database.Migrate(ctx, cfg.DBUrl); err != nil {
			logger.Log.Error("Migration failed", "error", err)
			os.Exit(1)
		}
	}

	pool, err := database.NewPostgresConnection(ctx, cfg.DBUrl)
	if err != nil {
		logger.Log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	s := &seeder{
		jobs:   postgres.NewJobRepository(pool),
		skills: postgres.NewSkillRepository(pool),
	}
	res, err := s.run(ctx, data)
	if err != nil {
		logger.Log.Error("Seeding failed", "error", err)
		os.Exit(1)
	}
	logger.Log.Info("Seeding complete",
		"skills_created", res.SkillsCreated,
		"skills_skipped", res.SkillsSkipped,
		"jobs_created", res.JobsCreated,
		"jobs_skipped", res.JobsSkipped,
	)
}

func parseSeedFile(r io.Reader) (*seedFile, error) {
	var data seedFile
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&data); err != nil {
		return nil, err
	}
	for i, job := range data.Jobs {
		if strings.TrimSpace(job.Title) == "" || strings.TrimSpace(job.Company) == "" {
			return nil, fmt.Errorf("job %d: title and company are required", i)
		}
	}
	return &data, nil
}

// run is idempotent: existing skills (by name) and jobs (by title and company) are skipped.
func (s *seeder) run(ctx context.Context, data *seedFile) (seedResult, error) {
	var res seedResult

	for _, name := range data.Skills {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		err := s.skills.Create(ctx, &domain.Skill{Name: name})
		switch {
		case err == nil:
			res.SkillsCreated++
		case apperror.KindOf(err) == apperror.KindConflict:
			res.SkillsSkipped++
		default:
			return res, fmt.Errorf("create skill %q: %w", name, err)
		}
	}

	existing, err := s.jobs.List(ctx)
	if err != nil {
		return res, fmt.Errorf("list jobs: %w", err)
	}
	seen := make(map[string]bool, len(existing))
	for _, j := range existing {
		seen[jobKey(j)] = true
	}

	for _, job := range data.Jobs {
		if seen[jobKey(job)] {
			res.JobsSkipped++
			continue
		}
		job := job
		if err := s.jobs.Create(ctx, &job); err != nil {
			return res, fmt.Errorf("create job %q: %w", job.Title, err)
		}
		seen[jobKey(job)] = true
		res.JobsCreated++
	}
	return res, nil
}

func jobKey(j domain.Job) string {
	return strings.ToLower(strings.TrimSpace(j.Title)) + "\x00" + strings.ToLower(strings.TrimSpace(j.Company))
}
