// Package srs implements an FSRS-family spaced repetition scheduling core.
//
// srs provides a pure-Go Scheduler that tracks per-item scheduling state,
// computes review intervals from a 17-parameter memory model, and records
// an append-only review log. The srs/optimizer subpackage trains the model
// parameters from that log.
//
// Basic usage:
//
//	s, err := srs.NewScheduler(srs.SchedulerConfig{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	s.AddItem("item-1")
//	card, err := s.Grade("item-1", srs.Good, time.Now())
package srs
