package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"glicks/internal/domain"
)

// Compile-time interface check.
var _ Provider = (*StaticProvider)(nil)

// StaticProvider reads the JSON snapshots published alongside the site:
// picks_today.json, picks_index.json, picks/{date}.json and results.json
// under data/ for the live season and data/{season}/ for archives.
type StaticProvider struct {
	fsys fs.FS
	log  *slog.Logger
}

// NewStaticProvider serves snapshots from the directory root.
func NewStaticProvider(root string, log *slog.Logger) *StaticProvider {
	return NewStaticProviderFS(os.DirFS(root), log)
}

// NewStaticProviderFS serves snapshots from fsys.
func NewStaticProviderFS(fsys fs.FS, log *slog.Logger) *StaticProvider {
	return &StaticProvider{fsys: fsys, log: log}
}

func (p *StaticProvider) readJSON(vc domain.ViewContext, file string, out any) error {
	name := vc.DataPath(file)
	data, err := fs.ReadFile(p.fsys, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%s: %w", name, ErrNotFound)
		}
		return fmt.Errorf("reading %s: %w", name, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding %s: %w", name, err)
	}
	return nil
}

func (p *StaticProvider) TodayPicks(_ context.Context, vc domain.ViewContext) (*domain.PicksPayload, error) {
	var out domain.PicksPayload
	if err := p.readJSON(vc, "picks_today.json", &out); err != nil {
		return nil, err
	}
	return sanitize(p.log, &out, vc.Season, "today"), nil
}

func (p *StaticProvider) PicksForDate(_ context.Context, vc domain.ViewContext, date string) (*domain.PicksPayload, error) {
	if err := checkDate(date); err != nil {
		return nil, err
	}
	var out domain.PicksPayload
	if err := p.readJSON(vc, "picks/"+date+".json", &out); err != nil {
		return nil, err
	}
	if out.Date == "" {
		out.Date = date
	}
	return sanitize(p.log, &out, vc.Season, date), nil
}

func (p *StaticProvider) DateIndex(_ context.Context, vc domain.ViewContext) (*domain.DateIndexPayload, error) {
	var out domain.DateIndexPayload
	if err := p.readJSON(vc, "picks_index.json", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (p *StaticProvider) Results(_ context.Context, vc domain.ViewContext) (*domain.ResultsPayload, error) {
	var out domain.ResultsPayload
	if err := p.readJSON(vc, "results.json", &out); err != nil {
		return nil, err
	}
	out.DeriveCumulative()
	return &out, nil
}
