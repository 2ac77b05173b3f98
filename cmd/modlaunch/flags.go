package main

import "time"

// Flag structs decouple cobra from the command logic for testing.

type LaunchFlags struct {
	ConfigPath string
	Name       string
	Root       string
	Executable string
	Mode       string
	Wait       bool
	// Remote daemon connection
	APIUrl     string
	APITimeout time.Duration
}

type StopFlags struct {
	ConfigPath string
	Name       string
	Root       string
	StopWait   time.Duration
	// Remote daemon connection
	APIUrl     string
	APITimeout time.Duration
}

type StatusFlags struct {
	ConfigPath string
	Name       string
	// Remote daemon connection
	APIUrl     string
	APITimeout time.Duration
}

type ProfileFlags struct {
	ConfigPath string
	Name       string
	// Remote daemon connection
	APIUrl     string
	APITimeout time.Duration
}

type ServeFlags struct {
	ConfigPath string
}
