package archive

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"spots-backend/pipeline/schedule"
)

// Stage names the building documents the pipeline hands between
// steps. Each stage writes a fresh file; only the hours merge mutates
// the filtered document in place.
type Stage string

const (
	StageDerived  Stage = "derived"
	StageFiltered Stage = "filtered"
	StageEnriched Stage = "enriched"
)

// Archive persists the pipeline's intermediate documents as
// term-coded JSON files, e.g. courses_SP26.json.
type Archive struct {
	dir string
}

func New(dir string) Archive {
	return Archive{dir: dir}
}

func (a Archive) CoursesPath(term string) string {
	return filepath.Join(a.dir, fmt.Sprintf("courses_%s.json", term))
}

func (a Archive) BuildingsPath(stage Stage, term string) string {
	return filepath.Join(a.dir, fmt.Sprintf("buildings_%s_%s.json", stage, term))
}

func (a Archive) SaveCourses(term string, doc schedule.SubjectDocument) error {
	return a.write(a.CoursesPath(term), doc)
}

func (a Archive) LoadCourses(term string) (schedule.SubjectDocument, error) {
	var doc schedule.SubjectDocument
	err := a.read(a.CoursesPath(term), &doc)
	return doc, err
}

func (a Archive) SaveBuildings(stage Stage, term string, doc schedule.BuildingDocument) error {
	return a.write(a.BuildingsPath(stage, term), doc)
}

func (a Archive) LoadBuildings(stage Stage, term string) (schedule.BuildingDocument, error) {
	var doc schedule.BuildingDocument
	err := a.read(a.BuildingsPath(stage, term), &doc)
	return doc, err
}

func (a Archive) write(path string, doc any) error {
	err := os.MkdirAll(a.dir, 0o755)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	err = os.WriteFile(path, data, 0o644)
	if err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func (a Archive) read(path string, doc any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	err = json.Unmarshal(data, doc)
	if err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	return nil
}
