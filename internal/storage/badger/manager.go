package badger

import (
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/ausculto/internal/common"
	"github.com/ternarybob/ausculto/internal/interfaces"
)

// Manager implements the StorageManager interface for Badger
type Manager struct {
	db            *BadgerDB
	source        interfaces.SourceStorage
	episode       interfaces.EpisodeStorage
	transcription interfaces.TranscriptionStorage
	fragment      interfaces.FragmentStorage
	feedback      interfaces.FeedbackStorage
	scanJob       interfaces.ScanJobStorage
	keyword       interfaces.KeywordStorage
	logger        arbor.ILogger
}

// NewManager creates a new Badger storage manager
func NewManager(logger arbor.ILogger, config *common.BadgerConfig) (interfaces.StorageManager, error) {
	db, err := NewBadgerDB(logger, config)
	if err != nil {
		return nil, err
	}

	manager := &Manager{
		db:            db,
		source:        NewSourceStorage(db, logger),
		episode:       NewEpisodeStorage(db, logger),
		transcription: NewTranscriptionStorage(db, logger),
		fragment:      NewFragmentStorage(db, logger),
		feedback:      NewFeedbackStorage(db, logger),
		scanJob:       NewScanJobStorage(db, logger),
		keyword:       NewKeywordStorage(db, logger),
		logger:        logger,
	}

	logger.Info().Msg("Badger storage manager initialized")

	return manager, nil
}

// SourceStorage returns the Source storage interface
func (m *Manager) SourceStorage() interfaces.SourceStorage {
	return m.source
}

// EpisodeStorage returns the Episode storage interface
func (m *Manager) EpisodeStorage() interfaces.EpisodeStorage {
	return m.episode
}

// TranscriptionStorage returns the Transcription storage interface
func (m *Manager) TranscriptionStorage() interfaces.TranscriptionStorage {
	return m.transcription
}

// FragmentStorage returns the Fragment storage interface
func (m *Manager) FragmentStorage() interfaces.FragmentStorage {
	return m.fragment
}

// FeedbackStorage returns the Feedback storage interface
func (m *Manager) FeedbackStorage() interfaces.FeedbackStorage {
	return m.feedback
}

// ScanJobStorage returns the ScanJob storage interface
func (m *Manager) ScanJobStorage() interfaces.ScanJobStorage {
	return m.scanJob
}

// KeywordStorage returns the Keyword storage interface
func (m *Manager) KeywordStorage() interfaces.KeywordStorage {
	return m.keyword
}

// Close closes the underlying database
func (m *Manager) Close() error {
	return m.db.Close()
}
