package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dustin/go-humanize"

	"github.com/konkalaitzidis/digital-health-app/internal/dataset"
	"github.com/konkalaitzidis/digital-health-app/internal/features"
	"github.com/konkalaitzidis/digital-health-app/internal/model"
	"github.com/konkalaitzidis/digital-health-app/internal/storage"
)

const artifactVersion = "1"

// Run executes one full training pass: load the dataset, extract windowed
// features, fit scaler and classifier, evaluate on a held-out split, write
// the artifact and record the run.
func Run(ctx context.Context, config *Config, logger *slog.Logger) error {
	var store storage.Store
	var runID int64

	if config.Output.RunsDatabase != "" {
		s := storage.NewSqliteStore(config.Output.RunsDatabase)
		defer s.Close()
		store = s

		var err error
		if runID, err = store.CreateRun(ctx, config.Dataset.Path, config); err != nil {
			return fmt.Errorf("creating run record: %w", err)
		}
		logger.Info("training run registered", slog.Int64("runID", runID))
	}

	samples, stats, err := dataset.Load(config.Dataset.Path)
	if err != nil {
		return fmt.Errorf("loading dataset: %w", err)
	}
	logger.Info("dataset loaded",
		slog.Group("stats",
			slog.String("rows", humanize.Comma(int64(stats.Rows))),
			slog.String("kept", humanize.Comma(int64(stats.Kept))),
			slog.Int("malformed", stats.Malformed),
			slog.Int("unmapped", stats.Unmapped),
		))
	if len(samples) == 0 {
		return fmt.Errorf("dataset '%s' contains no usable samples", config.Dataset.Path)
	}

	if err = ctx.Err(); err != nil {
		return err
	}

	p := config.WindowParams()
	ds, err := features.ExtractDataset(samples, p)
	if err != nil {
		return fmt.Errorf("extracting features: %w", err)
	}
	logger.Info("features extracted",
		slog.String("windows", humanize.Comma(int64(len(ds.X)))),
		slog.Int("features", features.Count),
		slog.Int("windowLength", p.Win()),
		slog.Int("step", p.Step()),
	)
	if len(ds.X) == 0 {
		return fmt.Errorf("dataset is shorter than one window (%d samples, need %d)", len(samples), p.Win())
	}

	encoder := model.FitLabelEncoder(ds.Y)
	y, err := encoder.EncodeAll(ds.Y)
	if err != nil {
		return fmt.Errorf("encoding labels: %w", err)
	}

	split, err := model.StratifiedSplit(ds.X, y, config.Training.TestFraction, config.Training.Seed)
	if err != nil {
		return fmt.Errorf("splitting dataset: %w", err)
	}

	scaler, err := model.FitScaler(split.XTrain)
	if err != nil {
		return fmt.Errorf("fitting scaler: %w", err)
	}
	xTrain, err := scaler.TransformAll(split.XTrain)
	if err != nil {
		return fmt.Errorf("scaling training set: %w", err)
	}
	xTest, err := scaler.TransformAll(split.XTest)
	if err != nil {
		return fmt.Errorf("scaling test set: %w", err)
	}

	classifier, err := model.FitKNN(config.Training.Neighbours, xTrain, split.YTrain, len(encoder.Classes))
	if err != nil {
		return fmt.Errorf("fitting classifier: %w", err)
	}

	if err = ctx.Err(); err != nil {
		return err
	}

	eval, err := model.Evaluate(classifier, encoder, xTest, split.YTest)
	if err != nil {
		return fmt.Errorf("evaluating classifier: %w", err)
	}

	logger.Info("evaluation finished",
		slog.Group("metrics",
			slog.String("accuracy", fmt.Sprintf("%0.3f", eval.Accuracy)),
			slog.String("macroF1", fmt.Sprintf("%0.3f", eval.MacroF1)),
		))
	for _, m := range eval.PerClass {
		logger.Info("class report",
			slog.String("class", m.Class),
			slog.String("precision", fmt.Sprintf("%0.3f", m.Precision)),
			slog.String("recall", fmt.Sprintf("%0.3f", m.Recall)),
			slog.String("f1", fmt.Sprintf("%0.3f", m.F1)),
			slog.Int("support", m.Support),
		)
	}

	artifact := &model.Artifact{
		Version:     artifactVersion,
		FS:          p.FS,
		WinSec:      p.WinSec,
		Overlap:     p.Overlap,
		NumFeatures: features.Count,
		Classes:     encoder.Classes,
		Scaler:      scaler,
		Encoder:     encoder,
		Classifier:  classifier,
	}
	if err = artifact.Validate(); err != nil {
		return fmt.Errorf("assembled artifact is inconsistent: %w", err)
	}
	if err = artifact.Save(config.Output.ArtifactPath); err != nil {
		return fmt.Errorf("saving artifact: %w", err)
	}
	logger.Info("artifact saved", slog.String("path", config.Output.ArtifactPath))

	if config.Output.ReportImage != "" {
		if err = writeConfusionMatrix(config, eval, encoder.Classes); err != nil {
			return fmt.Errorf("rendering confusion matrix: %w", err)
		}
		logger.Info("confusion matrix rendered", slog.String("path", config.Output.ReportImage))
	}

	if store != nil {
		result := storage.RunResult{
			Samples:      int64(len(samples)),
			Windows:      int64(len(ds.X)),
			Accuracy:     eval.Accuracy,
			MacroF1:      eval.MacroF1,
			ArtifactPath: config.Output.ArtifactPath,
		}
		if err = store.CompleteRun(ctx, runID, result); err != nil {
			return fmt.Errorf("completing run record: %w", err)
		}
		if err = store.StoreClassMetrics(ctx, runID, eval.PerClass); err != nil {
			return fmt.Errorf("storing class metrics: %w", err)
		}
	}

	return nil
}
