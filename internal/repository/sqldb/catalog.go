package sqldb

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/sakif/course-registration/internal/model"
	"github.com/sakif/course-registration/internal/repository"
)

// compile-time check that *DB implements repository.CatalogRepository
var _ repository.CatalogRepository = (*DB)(nil)

type eligibilityRow struct {
	LecturerID int64  `db:"lecturer_id"`
	CourseCode string `db:"course_code"`
}

// LoadCatalog reads every course, lecturer and eligibility row.
// Courses come back ordered by code and lecturers by id.
func (db *DB) LoadCatalog(ctx context.Context) (*model.Catalog, error) {
	cat := &model.Catalog{
		Courses:   []model.Course{},
		Lecturers: []model.Lecturer{},
	}

	err := db.withTx(ctx, func(tx *sqlx.Tx) error {
		if err := tx.SelectContext(ctx, &cat.Courses,
			`SELECT code, name FROM courses ORDER BY code`); err != nil {
			return fmt.Errorf("loading courses: %w", err)
		}
		if err := tx.SelectContext(ctx, &cat.Lecturers,
			`SELECT id, name FROM lecturers ORDER BY id`); err != nil {
			return fmt.Errorf("loading lecturers: %w", err)
		}

		var links []eligibilityRow
		if err := tx.SelectContext(ctx, &links,
			`SELECT lecturer_id, course_code FROM lecturer_courses ORDER BY lecturer_id, course_code`); err != nil {
			return fmt.Errorf("loading eligibility: %w", err)
		}

		byID := make(map[int64]*model.Lecturer, len(cat.Lecturers))
		for i := range cat.Lecturers {
			cat.Lecturers[i].Courses = []string{}
			byID[cat.Lecturers[i].ID] = &cat.Lecturers[i]
		}
		for _, link := range links {
			if l, ok := byID[link.LecturerID]; ok {
				l.Courses = append(l.Courses, link.CourseCode)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("sqldb: %w", err)
	}

	return cat, nil
}

// ReplaceCatalog deletes the current catalog and inserts the given one in a
// single transaction. It is a seed-time operation; the request path only
// reads the catalog.
func (db *DB) ReplaceCatalog(ctx context.Context, cat *model.Catalog) error {
	var links []eligibilityRow
	for _, l := range cat.Lecturers {
		for _, code := range l.Courses {
			links = append(links, eligibilityRow{LecturerID: l.ID, CourseCode: code})
		}
	}

	err := db.withTx(ctx, func(tx *sqlx.Tx) error {
		for _, table := range []string{"lecturer_courses", "lecturers", "courses"} {
			if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
				return fmt.Errorf("clearing %s: %w", table, err)
			}
		}

		if len(cat.Courses) > 0 {
			if _, err := tx.NamedExecContext(ctx,
				`INSERT INTO courses (code, name) VALUES (:code, :name)`, cat.Courses); err != nil {
				return fmt.Errorf("inserting courses: %w", err)
			}
		}
		if len(cat.Lecturers) > 0 {
			if _, err := tx.NamedExecContext(ctx,
				`INSERT INTO lecturers (id, name) VALUES (:id, :name)`, cat.Lecturers); err != nil {
				return fmt.Errorf("inserting lecturers: %w", err)
			}
		}
		if len(links) > 0 {
			if _, err := tx.NamedExecContext(ctx,
				`INSERT INTO lecturer_courses (lecturer_id, course_code) VALUES (:lecturer_id, :course_code)`, links); err != nil {
				return fmt.Errorf("inserting eligibility: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("sqldb: replacing catalog: %w", err)
	}

	db.logger.Info("catalog replaced",
		slog.Int("courses", len(cat.Courses)),
		slog.Int("lecturers", len(cat.Lecturers)),
	)
	return nil
}
