package store

import (
	"context"
	"fmt"

	"github.com/cypheruni/learn/internal/models"
)

// Seed loads the starter catalog into an empty store. It is a no-op when
// any series already exist, so restarts don't duplicate content.
func Seed(ctx context.Context, s Store) error {
	existing, err := s.ListSeries(ctx)
	if err != nil {
		return fmt.Errorf("failed to check existing catalog: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	type seedSeries struct {
		input  models.CreateSeriesInput
		videos []models.CreateVideoInput
	}

	catalog := []seedSeries{
		{
			input: models.CreateSeriesInput{
				Name:          "GitHub Series",
				Description:   "Master version control with GitHub. Learn branching, pull requests, and collaboration workflows.",
				ThumbnailURL:  "https://images.unsplash.com/photo-1555949963-aa79dcee981c?auto=format&fit=crop&w=800&h=400",
				TotalDuration: "2h 15m",
				Level:         models.LevelBeginner,
			},
			videos: []models.CreateVideoInput{
				{
					Title:       "Introduction to GitHub",
					Description: "Learn what GitHub is, why developers use it, and how it fits into modern software development workflows.",
					VideoURL:    "https://twitter.com/sample/status/123456789",
					BannerURL:   "https://images.unsplash.com/photo-1618401471353-b98afee0b2eb?auto=format&fit=crop&w=800&h=450",
					Duration:    "15:30",
					Level:       models.LevelBeginner,
					Tags:        []string{"Version Control", "Collaboration", "Open Source", "Portfolio"},
				},
				{
					Title:       "Git Basics: Clone, Add, Commit",
					Description: "Master the fundamental Git commands every developer needs: cloning repositories, staging changes, and making commits.",
					VideoURL:    "https://twitter.com/sample/status/123456790",
					BannerURL:   "https://images.unsplash.com/photo-1629654297299-c8506221ca97?auto=format&fit=crop&w=800&h=450",
					Duration:    "18:45",
					Level:       models.LevelBeginner,
					Tags:        []string{"Git", "Commands", "Terminal", "Workflow"},
				},
				{
					Title:       "Branching and Merging",
					Description: "Understand Git branching strategies, create feature branches, and learn how to merge changes safely.",
					VideoURL:    "https://twitter.com/sample/status/123456791",
					BannerURL:   "https://images.unsplash.com/photo-1551288049-bebda4e38f71?auto=format&fit=crop&w=800&h=450",
					Duration:    "22:10",
					Level:       models.LevelBeginner,
					Tags:        []string{"Branching", "Merging", "Git Flow", "Collaboration"},
				},
			},
		},
		{
			input: models.CreateSeriesInput{
				Name:          "No/Low Code Tools",
				Description:   "Build powerful applications without traditional coding. Explore Zapier, Airtable, and more.",
				ThumbnailURL:  "https://images.unsplash.com/photo-1551434678-e076c223a692?auto=format&fit=crop&w=800&h=400",
				TotalDuration: "3h 45m",
				Level:         models.LevelBeginner,
			},
		},
		{
			input: models.CreateSeriesInput{
				Name:          "Essential Dev Extensions",
				Description:   "Supercharge your development workflow with must-have VS Code extensions and browser tools.",
				ThumbnailURL:  "https://images.unsplash.com/photo-1587620962725-abab7fe55159?auto=format&fit=crop&w=800&h=400",
				TotalDuration: "1h 30m",
				Level:         models.LevelIntermediate,
			},
		},
		{
			input: models.CreateSeriesInput{
				Name:          "Notion Basics",
				Description:   "Organize your life and projects with Notion. Learn databases, templates, and advanced features.",
				ThumbnailURL:  "https://images.unsplash.com/photo-1586281380349-632531db7ed4?auto=format&fit=crop&w=800&h=400",
				TotalDuration: "2h 50m",
				Level:         models.LevelBeginner,
			},
		},
		{
			input: models.CreateSeriesInput{
				Name:          "Intro to Coding",
				Description:   "Start your coding journey from zero. Learn programming concepts, logic, and your first language.",
				ThumbnailURL:  "https://images.unsplash.com/photo-1515879218367-8466d910aaa4?auto=format&fit=crop&w=800&h=400",
				TotalDuration: "4h 20m",
				Level:         models.LevelBeginner,
			},
		},
		{
			input: models.CreateSeriesInput{
				Name:          "Web Dev Fundamentals",
				Description:   "Build your first websites with HTML, CSS, and JavaScript. Learn responsive design and modern practices.",
				ThumbnailURL:  "https://images.unsplash.com/photo-1467232004584-a241de8bcf5d?auto=format&fit=crop&w=800&h=400",
				TotalDuration: "6h 15m",
				Level:         models.LevelBeginner,
			},
		},
	}

	for _, entry := range catalog {
		created, err := s.CreateSeries(ctx, entry.input)
		if err != nil {
			return fmt.Errorf("failed to seed series %q: %w", entry.input.Name, err)
		}
		for _, vin := range entry.videos {
			vin.SeriesID = created.ID
			if _, err := s.CreateVideo(ctx, vin); err != nil {
				return fmt.Errorf("failed to seed video %q: %w", vin.Title, err)
			}
		}
	}
	return nil
}
