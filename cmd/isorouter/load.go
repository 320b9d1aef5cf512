package main

import (
	"context"
	"os"

	"github.com/vango-dev/isorouter/internal/config"
)

const defaultRegion = "us-east-1"

// loadConfig reads the route table named by --config.
func loadConfig(ctx context.Context, opts *globalOptions) (*config.Config, error) {
	path := opts.configPath
	if path == "" {
		return config.Load(".")
	}

	if bucket, key, ok := config.ParseS3URL(path); ok {
		client := config.NewS3Client(awsRegion(opts.region))
		return config.LoadS3(ctx, client, bucket, key)
	}

	if fi, err := os.Stat(path); err == nil && fi.IsDir() {
		return config.Load(path)
	}
	return config.LoadFile(path)
}

func awsRegion(flag string) string {
	if flag != "" {
		return flag
	}
	if r := os.Getenv("AWS_REGION"); r != "" {
		return r
	}
	return defaultRegion
}
