// Package dining scrapes campus dining-hall menu pages into structured menu
// items and keeps them in a relational store, one row per hall, item, meal
// and date.
//
// This package contains domain types, the text classifiers used to infer
// item attributes, and service interfaces, following Ben Johnson's Standard
// Package Layout. Implementations live in subdirectories named after their
// primary dependency (e.g., goquery/, sqlite/, postgres/, cron/).
package dining
