package config

func defaultFFmpegFormat() string { return "avfoundation" }

func defaultFFmpegInput() string { return ":default" }
