// Package catalog loads course catalogs from YAML and caches catalog
// snapshots in front of the store.
//
// A catalog file looks like:
//
//	courses:
//	  - id: CS101
//	    name: Introduction to Computer Science
//	lecturers:
//	  - { id: 1, name: Dr. Sarah Smith, courses: [CS101, CS202] }
//
// The default catalog is embedded in the binary, so `seed` works without a
// file on disk.
package catalog

import (
	"bytes"
	"cmp"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/sakif/course-registration/internal/model"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// Default returns a fresh copy of the embedded default catalog.
// It panics if the embedded file is malformed, which the tests rule out.
func Default() *model.Catalog {
	c, err := Load(bytes.NewReader(defaultCatalog))
	if err != nil {
		panic(fmt.Sprintf("catalog: embedded default catalog is invalid: %v", err))
	}
	return c
}

// LoadFile reads and validates a catalog from a YAML file.
func LoadFile(path string) (*model.Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: opening %s: %w", path, err)
	}
	defer f.Close()

	c, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("catalog: %s: %w", path, err)
	}
	return c, nil
}

// Load parses a YAML catalog, validates it, and returns it in canonical
// order (courses by code, lecturers by id, each lecturer's courses sorted).
func Load(r io.Reader) (*model.Catalog, error) {
	var c model.Catalog
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("catalog is empty")
		}
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}

	for i := range c.Courses {
		c.Courses[i].Code = strings.TrimSpace(c.Courses[i].Code)
		c.Courses[i].Name = strings.TrimSpace(c.Courses[i].Name)
	}
	for i := range c.Lecturers {
		c.Lecturers[i].Name = strings.TrimSpace(c.Lecturers[i].Name)
	}

	if err := Validate(&c); err != nil {
		return nil, err
	}
	Sort(&c)
	return &c, nil
}

// Validate checks the catalog's internal consistency: unique non-empty
// course codes, unique positive lecturer ids, non-empty names, and
// eligibility lists that only reference known courses.
func Validate(c *model.Catalog) error {
	if c.Empty() {
		return errors.New("catalog has no courses")
	}

	codes := make(map[string]struct{}, len(c.Courses))
	for _, course := range c.Courses {
		if course.Code == "" {
			return errors.New("course with empty id")
		}
		if course.Name == "" {
			return fmt.Errorf("course %s has no name", course.Code)
		}
		if _, dup := codes[course.Code]; dup {
			return fmt.Errorf("duplicate course id %s", course.Code)
		}
		codes[course.Code] = struct{}{}
	}

	ids := make(map[int64]struct{}, len(c.Lecturers))
	for _, l := range c.Lecturers {
		if l.ID <= 0 {
			return fmt.Errorf("lecturer %q has non-positive id %d", l.Name, l.ID)
		}
		if l.Name == "" {
			return fmt.Errorf("lecturer %d has no name", l.ID)
		}
		if _, dup := ids[l.ID]; dup {
			return fmt.Errorf("duplicate lecturer id %d", l.ID)
		}
		ids[l.ID] = struct{}{}

		for _, code := range l.Courses {
			if _, ok := codes[code]; !ok {
				return fmt.Errorf("lecturer %d teaches unknown course %s", l.ID, code)
			}
		}
	}

	return nil
}

// Sort puts a catalog in canonical order in place.
func Sort(c *model.Catalog) {
	slices.SortFunc(c.Courses, func(a, b model.Course) int {
		return strings.Compare(a.Code, b.Code)
	})
	slices.SortFunc(c.Lecturers, func(a, b model.Lecturer) int {
		return cmp.Compare(a.ID, b.ID)
	})
	for i := range c.Lecturers {
		courses := slices.Clone(c.Lecturers[i].Courses)
		if courses == nil {
			courses = []string{}
		}
		slices.Sort(courses)
		c.Lecturers[i].Courses = slices.Compact(courses)
	}
}
