package storage

import "otodom-pipeline/models"

// FeatureWriter is the interface any feature-table storage backend must satisfy.
type FeatureWriter interface {
	Write(rows []*models.FeatureRecord) error
	Close() error
}

// RawObservationWriter is the interface for persisting unprocessed scrape batches.
type RawObservationWriter interface {
	WriteRaw(obs []*models.RawObservation) error
	Close() error
}
