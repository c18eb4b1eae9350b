//go:build !darwin

package config

func defaultFFmpegFormat() string { return "pulse" }

func defaultFFmpegInput() string { return "default" }
