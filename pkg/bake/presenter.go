package bake

import (
	"fmt"

	"go.uber.org/zap"
)

// User-facing messages.
const (
	LoadingMessage    = "Baking lightmap..."
	AlertInvalidInput = "Error: Could not bake lightmap. Check console for details."
	alertBakeFailed   = "Error during lightmap baking: "
)

// StatusMessage is the summary shown after a successful bake.
func StatusMessage(n int) string {
	return fmt.Sprintf("Successfully processed %d objects in the scene.", n)
}

// Progress reports how far a bake has come.
type Progress struct {
	Done  int
	Total int
	Mesh  string
}

// Presenter is the user-facing side of a bake. Every ShowLoading is
// followed by exactly one HideLoading, whatever the outcome.
type Presenter interface {
	ShowLoading(msg string)
	HideLoading()
	Progress(p Progress)
	Alert(msg string)
	ShowResults(status string, results []*Result)
}

// NopPresenter ignores everything.
type NopPresenter struct{}

func (NopPresenter) ShowLoading(string)            {}
func (NopPresenter) HideLoading()                  {}
func (NopPresenter) Progress(Progress)             {}
func (NopPresenter) Alert(string)                  {}
func (NopPresenter) ShowResults(string, []*Result) {}

// LogPresenter reports through a zap logger. It is what the headless
// baker uses.
type LogPresenter struct {
	Log *zap.Logger
}

func (p LogPresenter) ShowLoading(msg string) {
	p.Log.Info(msg)
}

func (p LogPresenter) HideLoading() {}

func (p LogPresenter) Progress(pr Progress) {
	p.Log.Debug("baked mesh",
		zap.String("mesh", pr.Mesh),
		zap.Int("done", pr.Done),
		zap.Int("total", pr.Total),
	)
}

func (p LogPresenter) Alert(msg string) {
	p.Log.Error(msg)
}

func (p LogPresenter) ShowResults(status string, results []*Result) {
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	p.Log.Info(status, zap.Int("meshes", len(results)), zap.Int("failed", failed))
}
