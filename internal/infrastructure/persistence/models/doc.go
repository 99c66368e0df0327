// Package models contains the GORM persistence models for the sync and
// rules domains. Models carry the schema tags and convert to and from
// domain entities; they never leak outside the persistence layer.
package models
