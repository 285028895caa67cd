package main

import (
	"context"
	"log"

	"github.com/agenticfraud/fraud-pipeline/internal/app/bootstrap"
)

func main() {
	ctx := context.Background()
	runtime, err := bootstrap.NewRuntime(ctx, "configs/default.yaml")
	if err != nil {
		log.Fatalf("bootstrap pipeline runtime: %v", err)
	}
	if err := runtime.RunPipeline(ctx); err != nil {
		log.Fatalf("run pipeline: %v", err)
	}
}
