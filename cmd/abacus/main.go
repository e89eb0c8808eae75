// Copyright 2026 The Abacus Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Command abacus trains and evaluates the MNIST classifier.
//
//	abacus train -config train.yaml -epochs 5
//	abacus eval -checkpoint model.ckpt
//	abacus version
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"syscall"

	"github.com/abacus-ml/abacus/autodiff"
	"github.com/abacus-ml/abacus/backend/cpu"
	"github.com/abacus-ml/abacus/internal/config"
	"github.com/abacus-ml/abacus/internal/dataset"
	"github.com/abacus-ml/abacus/internal/trainer"
	"github.com/abacus-ml/abacus/nn"
	"github.com/abacus-ml/abacus/optim"
)

const version = "0.1.0"

type backend = *autodiff.Backend[*cpu.Backend]

func main() {
	log.SetFlags(log.Ltime)

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch os.Args[1] {
	case "train":
		err = runTrain(ctx, os.Args[2:])
	case "eval":
		err = runEval(ctx, os.Args[2:])
	case "version":
		fmt.Printf("abacus %s\ncpu: %v\n", version, cpu.Features())
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("error: %v", err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: abacus <command> [flags]

commands:
  train    train the MNIST classifier
  eval     evaluate a checkpoint on the test set
  version  print version and CPU features`)
}

// loadConfig reads the optional config file and applies flag overrides on
// top. Flags the user did not pass keep the file's (or default) values.
func loadConfig(fs *flag.FlagSet, args []string) (config.Config, error) {
	cfgPath := fs.String("config", "", "YAML config file")
	epochs := fs.Int("epochs", 0, "training epochs")
	batch := fs.Int("batch", 0, "mini-batch size")
	lr := fs.Float64("lr", 0, "learning rate")
	momentum := fs.Float64("momentum", -1, "SGD momentum")
	hidden := fs.Int("hidden", 0, "hidden layer width")
	seed := fs.Int64("seed", 0, "shuffle and init seed")
	dataDir := fs.String("data", "", "MNIST directory")
	checkpoint := fs.String("checkpoint", "", "checkpoint path")
	if err := fs.Parse(args); err != nil {
		return config.Config{}, err
	}

	cfg := config.Default()
	if *cfgPath != "" {
		var err error
		if cfg, err = config.LoadFile(*cfgPath); err != nil {
			return cfg, err
		}
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "epochs":
			cfg.Epochs = *epochs
		case "batch":
			cfg.BatchSize = *batch
		case "lr":
			cfg.LR = *lr
		case "momentum":
			cfg.Momentum = *momentum
		case "hidden":
			cfg.Hidden = *hidden
		case "seed":
			cfg.Seed = *seed
		case "data":
			cfg.DataDir = *dataDir
		case "checkpoint":
			cfg.Checkpoint = *checkpoint
		}
	})
	return cfg, cfg.Validate()
}

func newModel(ad backend, hidden int) *nn.Sequential[backend] {
	return nn.NewSequential[backend](
		nn.NewLinear[backend]("fc1", 28*28, hidden, ad),
		nn.NewReLU[backend](),
		nn.NewLinear[backend]("fc2", hidden, 10, ad),
	)
}

func loaders(ctx context.Context, ad backend, cfg config.Config) (train, test *dataset.Loader[backend], err error) {
	trainSet, err := dataset.Load(ctx, cfg.DataDir, "train")
	if err != nil {
		return nil, nil, err
	}
	testSet, err := dataset.Load(ctx, cfg.DataDir, "test")
	if err != nil {
		return nil, nil, err
	}
	if train, err = dataset.NewLoader(trainSet, ad, cfg.BatchSize, true, cfg.Seed); err != nil {
		return nil, nil, err
	}
	if test, err = dataset.NewLoader(testSet, ad, cfg.BatchSize, false, cfg.Seed); err != nil {
		return nil, nil, err
	}
	return train, test, nil
}

func runTrain(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("train", flag.ExitOnError)
	cfg, err := loadConfig(fs, args)
	if err != nil {
		return err
	}
	rand.Seed(cfg.Seed)

	ad := autodiff.New(cpu.New())
	log.Printf("start cmd=train epochs=%d batch=%d lr=%g hidden=%d backend=%s",
		cfg.Epochs, cfg.BatchSize, cfg.LR, cfg.Hidden, ad.Name())

	train, test, err := loaders(ctx, ad, cfg)
	if err != nil {
		return err
	}

	model := newModel(ad, cfg.Hidden)
	var opt optim.Optimizer[backend]
	if cfg.Momentum > 0 {
		opt = optim.NewSGDMomentum(model.Parameters(), cfg.LR, cfg.Momentum)
	} else {
		opt = optim.NewSGD(model.Parameters(), cfg.LR)
	}

	result, err := trainer.Run(ctx, ad, model, opt, train, test, trainer.RunConfig{
		Epochs:   cfg.Epochs,
		LogEvery: cfg.LogEvery,
	})
	if err != nil {
		return err
	}
	log.Printf("done epochs=%d final_loss=%.4f test_accuracy=%.4f",
		result.EpochsTrained, result.FinalLoss, result.TestAccuracy)

	if cfg.Checkpoint != "" {
		if err := nn.SaveFile(cfg.Checkpoint, model); err != nil {
			return fmt.Errorf("save checkpoint: %w", err)
		}
		log.Printf("checkpoint saved path=%s", cfg.Checkpoint)
	}
	return nil
}

func runEval(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("eval", flag.ExitOnError)
	cfg, err := loadConfig(fs, args)
	if err != nil {
		return err
	}
	if cfg.Checkpoint == "" {
		return fmt.Errorf("eval requires -checkpoint")
	}

	ad := autodiff.New(cpu.New())
	model := newModel(ad, cfg.Hidden)
	if err := nn.LoadFile(cfg.Checkpoint, model); err != nil {
		return fmt.Errorf("load checkpoint: %w", err)
	}

	testSet, err := dataset.Load(ctx, cfg.DataDir, "test")
	if err != nil {
		return err
	}
	test, err := dataset.NewLoader(testSet, ad, cfg.BatchSize, false, cfg.Seed)
	if err != nil {
		return err
	}

	acc, err := trainer.Evaluate(ad, model, test)
	if err != nil {
		return err
	}
	log.Printf("eval checkpoint=%s samples=%d accuracy=%.4f", cfg.Checkpoint, test.NumSamples(), acc)
	return nil
}
