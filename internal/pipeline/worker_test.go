package pipeline

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/dgallion1/freteiro/internal/config"
	"github.com/dgallion1/freteiro/internal/tariff"
	"github.com/shopspring/decimal"
)

const sampleReport = "Relatorio de Romaneios  Veiculo ABC-1234\n" +
	"Romaneio 2024/03/15-001  Rota ARAPIRACA    KM Inicial 1000  KM Final 1120  Itens 2.003\n" +
	"\fRomaneio 2024/03/16-002  Rota ATLANTIS    KM Inicial 50\n"

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig(t *testing.T) config.Config {
	t.Helper()
	return config.Config{
		Provider:        "Transportes Silva",
		Profile:         tariff.ProfileVUC,
		ReportDate:      "31/03/2024",
		OutputDir:       t.TempDir(),
		HelperAllowance: decimal.NewFromInt(80),
		WorkerCount:     2,
		MaxQueueSize:    10,
		MaxUploadBytes:  1 << 20,
	}
}

func TestWorker_ProcessText(t *testing.T) {
	cfg := testConfig(t)
	w := NewWorker(NewJobStore(), testLogger(), cfg)
	job := NewJob("marco.txt", []byte(sampleReport))

	w.Process(context.Background(), job)

	snap := job.Snapshot()
	if snap.Status != StatusCompleted {
		t.Fatalf("expected completed, got %q (errors: %v)", snap.Status, snap.Progress.Errors)
	}
	if snap.Title != "marco" {
		t.Errorf("expected title marco, got %q", snap.Title)
	}
	if snap.Progress.Pages != 2 {
		t.Errorf("expected 2 pages, got %d", snap.Progress.Pages)
	}
	if snap.Progress.Records != 2 || snap.Progress.Unresolved != 1 {
		t.Errorf("expected 2 records with 1 unresolved, got %d/%d", snap.Progress.Records, snap.Progress.Unresolved)
	}

	res := job.Result()
	if res == nil {
		t.Fatal("expected a priced report")
	}
	if res.Header.Plate != "ABC-1234" || res.Header.Date != "31/03/2024" {
		t.Errorf("expected plate and configured date, got %+v", res.Header)
	}
	first := res.Records[0]
	if first.Distance != 120 {
		t.Errorf("expected distance 120, got %d", first.Distance)
	}
	wantTotal := tariff.Lookup(first.Region, tariff.ProfileVUC).Add(decimal.NewFromInt(80))
	if !first.TotalValue.Equal(wantTotal) {
		t.Errorf("expected total %s, got %s", wantTotal, first.TotalValue)
	}
	if !res.Records[1].FreightValue.IsZero() {
		t.Errorf("expected zero freight for unresolved region, got %s", res.Records[1].FreightValue)
	}

	want := filepath.Join(cfg.OutputDir, "prestacao_Transportes_Silva_marco.xlsx")
	if snap.OutputPath != want {
		t.Errorf("expected output %q, got %q", want, snap.OutputPath)
	}
	if info, err := os.Stat(want); err != nil || info.Size() == 0 {
		t.Errorf("expected workbook on disk, got %v", err)
	}
	if job.FileData() != nil {
		t.Error("expected file data to be released after completion")
	}
}

func TestWorker_NoExportWithoutOutputDir(t *testing.T) {
	cfg := testConfig(t)
	cfg.OutputDir = ""
	w := NewWorker(NewJobStore(), testLogger(), cfg)
	job := NewJob("marco.txt", []byte(sampleReport))

	w.Process(context.Background(), job)

	snap := job.Snapshot()
	if snap.Status != StatusCompleted {
		t.Fatalf("expected completed, got %q", snap.Status)
	}
	if snap.OutputPath != "" {
		t.Errorf("expected no output path, got %q", snap.OutputPath)
	}
}

func TestWorker_NoHeadersStillCompletes(t *testing.T) {
	w := NewWorker(NewJobStore(), testLogger(), testConfig(t))
	job := NewJob("vazio.txt", []byte("nenhum romaneio aqui"))

	w.Process(context.Background(), job)

	if job.Status != StatusCompleted {
		t.Fatalf("expected completed, got %q", job.Status)
	}
	if res := job.Result(); res == nil || len(res.Records) != 0 {
		t.Errorf("expected an empty report, got %+v", res)
	}
}

func TestWorker_DuplicateContent(t *testing.T) {
	store := NewJobStore()
	w := NewWorker(store, testLogger(), testConfig(t))
	first := NewJob("a.txt", []byte(sampleReport))
	second := NewJob("b.txt", []byte(sampleReport))

	w.Process(context.Background(), first)
	w.Process(context.Background(), second)

	if first.Status != StatusCompleted {
		t.Fatalf("expected first job completed, got %q", first.Status)
	}
	snap := second.Snapshot()
	if snap.Status != StatusDupSkipped {
		t.Fatalf("expected duplicate_skipped, got %q", snap.Status)
	}
	if snap.DuplicateOf != first.ID {
		t.Errorf("expected duplicate of %q, got %q", first.ID, snap.DuplicateOf)
	}
	if second.Result() != nil {
		t.Error("expected no result for a skipped job")
	}
}

func TestWorker_Failures(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		data     []byte
		limit    int64
	}{
		{"unsupported extension", "planilha.xls", []byte("x"), 1 << 20},
		{"too large", "grande.txt", make([]byte, 64), 32},
		{"unreadable pdf", "quebrado.pdf", []byte("not a pdf"), 1 << 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t)
			cfg.MaxUploadBytes = tt.limit
			w := NewWorker(NewJobStore(), testLogger(), cfg)
			job := NewJob(tt.filename, tt.data)

			w.Process(context.Background(), job)

			snap := job.Snapshot()
			if snap.Status != StatusFailed {
				t.Fatalf("expected failed, got %q", snap.Status)
			}
			if snap.Phase != "reading" {
				t.Errorf("expected failure in reading, got %q", snap.Phase)
			}
			if len(snap.Progress.Errors) == 0 {
				t.Error("expected an error to be recorded")
			}
		})
	}
}

func TestWorker_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	w := NewWorker(NewJobStore(), testLogger(), testConfig(t))
	job := NewJob("marco.txt", []byte(sampleReport))

	w.Process(ctx, job)

	if job.Status != StatusFailed {
		t.Errorf("expected failed on cancelled context, got %q", job.Status)
	}
}

func TestWorker_SameBaseNameGetsDistinctOutput(t *testing.T) {
	cfg := testConfig(t)
	store := NewJobStore()
	w := NewWorker(store, testLogger(), cfg)
	march := NewJob("marco/romaneios.txt", []byte("Romaneio 2024/03/15-001  Rota IGACI    KM Inicial 10"))
	april := NewJob("abril/romaneios.txt", []byte("Romaneio 2024/04/15-777  Rota BELEM    KM Inicial 10"))

	w.Process(context.Background(), march)
	w.Process(context.Background(), april)

	first, second := march.Snapshot(), april.Snapshot()
	if first.Status != StatusCompleted || second.Status != StatusCompleted {
		t.Fatalf("expected both completed, got %q and %q", first.Status, second.Status)
	}
	wantFirst := filepath.Join(cfg.OutputDir, "prestacao_Transportes_Silva_romaneios.xlsx")
	if first.OutputPath != wantFirst {
		t.Errorf("expected %q, got %q", wantFirst, first.OutputPath)
	}
	wantSecond := filepath.Join(cfg.OutputDir, "prestacao_Transportes_Silva_romaneios_"+april.ID[:8]+".xlsx")
	if second.OutputPath != wantSecond {
		t.Errorf("expected %q, got %q", wantSecond, second.OutputPath)
	}
	for _, p := range []string{first.OutputPath, second.OutputPath} {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("expected workbook %s on disk: %v", p, err)
		}
	}
}
