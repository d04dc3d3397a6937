package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/arcanaland/cardoracle/internal/logger"
	"github.com/arcanaland/cardoracle/internal/oracle"
)

// GormStore implements ContentStore on top of gorm
type GormStore struct {
	db  *gorm.DB
	log *logger.Logger
}

// Open connects to the database for driver ("sqlite" or "postgres") and
// migrates the catalog tables.
func Open(driver, dsn string, log *logger.Logger) (*GormStore, error) {
	var dialector gorm.Dialector
	switch driver {
	case "", "sqlite":
		if dsn != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(dsn), 0755); err != nil {
				return nil, fmt.Errorf("error creating database directory: %w", err)
			}
		}
		dialector = sqlite.Open(dsn)
	case "postgres":
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}

	log = log.With("service", "GormStore", "driver", driver)
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		log.Error("Failed to connect to database", "error", err)
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	s := &GormStore{db: db, log: log}
	if err := s.Migrate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Migrate creates or updates the catalog tables
func (s *GormStore) Migrate() error {
	err := s.db.AutoMigrate(
		&oracle.Reading{},
		&oracle.Position{},
		&oracle.Card{},
		&oracle.CardReading{},
		&oracle.Description{},
	)
	if err != nil {
		s.log.Error("Auto migration failed", "error", err)
		return fmt.Errorf("migrating catalog tables: %w", err)
	}
	return nil
}

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping checks the database connection
func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *GormStore) GetReading(ctx context.Context, id uint) (*oracle.Reading, error) {
	var r oracle.Reading
	if err := s.db.WithContext(ctx).First(&r, id).Error; err != nil {
		return nil, notFound(err, oracle.KindReading, id)
	}
	return &r, nil
}

func (s *GormStore) GetCard(ctx context.Context, id uint) (*oracle.Card, error) {
	var c oracle.Card
	if err := s.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, notFound(err, oracle.KindCard, id)
	}
	if err := s.loadLinks(ctx, []*oracle.Card{&c}); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *GormStore) FindReadings(ctx context.Context, q Query) ([]oracle.Reading, error) {
	var readings []oracle.Reading
	tx := filter(s.db.WithContext(ctx).Model(&oracle.Reading{}), "readings", q)
	if q.ReadingID != 0 {
		tx = tx.Where("readings.id = ?", q.ReadingID)
	}
	if err := tx.Order("readings.title, readings.id").Find(&readings).Error; err != nil {
		return nil, fmt.Errorf("finding readings: %w", err)
	}
	return readings, nil
}

func (s *GormStore) FindPositions(ctx context.Context, q Query) ([]oracle.Position, error) {
	var positions []oracle.Position
	tx := filter(s.db.WithContext(ctx).Model(&oracle.Position{}), "positions", q)
	if q.ReadingID != 0 {
		tx = tx.Where("positions.reading_id = ?", q.ReadingID)
	}
	if err := tx.Order("positions.card_order ASC, positions.id ASC").Find(&positions).Error; err != nil {
		return nil, fmt.Errorf("finding positions: %w", err)
	}
	return positions, nil
}

func (s *GormStore) FindCards(ctx context.Context, q Query) ([]oracle.Card, error) {
	var cards []oracle.Card
	tx := s.db.WithContext(ctx).Model(&oracle.Card{}).Select("cards.*")
	if q.ReadingID != 0 {
		tx = tx.Joins("JOIN card_readings ON card_readings.card_id = cards.id AND card_readings.reading_id = ?", q.ReadingID)
	}
	tx = filter(tx, "cards", q)
	if err := tx.Order("cards.id").Find(&cards).Error; err != nil {
		return nil, fmt.Errorf("finding cards: %w", err)
	}

	ptrs := make([]*oracle.Card, len(cards))
	for i := range cards {
		ptrs[i] = &cards[i]
	}
	if err := s.loadLinks(ctx, ptrs); err != nil {
		return nil, err
	}
	return cards, nil
}

func (s *GormStore) FindDescriptions(ctx context.Context, q Query) ([]oracle.Description, error) {
	var descriptions []oracle.Description
	db := s.db.WithContext(ctx)
	tx := filter(db.Model(&oracle.Description{}), "descriptions", q)
	if q.CardID != 0 {
		tx = tx.Where("descriptions.card_id = ?", q.CardID)
	}
	if q.PositionID != 0 {
		tx = tx.Where("descriptions.position_id = ?", q.PositionID)
	}
	if q.ReadingID != 0 {
		positions := db.Model(&oracle.Position{}).Select("id").Where("reading_id = ?", q.ReadingID)
		cards := db.Model(&oracle.CardReading{}).Select("card_id").Where("reading_id = ?", q.ReadingID)
		tx = tx.Where("descriptions.position_id IN (?) AND descriptions.card_id IN (?)", positions, cards)
	}
	if err := tx.Order("descriptions.id").Find(&descriptions).Error; err != nil {
		return nil, fmt.Errorf("finding descriptions: %w", err)
	}
	return descriptions, nil
}

func (s *GormStore) Save(ctx context.Context, record Record) error {
	if err := record.Validate(); err != nil {
		return err
	}

	db := s.db.WithContext(ctx)
	switch r := record.(type) {
	case *oracle.Card:
		return db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Save(r).Error; err != nil {
				return fmt.Errorf("saving card %q: %w", r.Title, err)
			}
			return replaceLinks(tx, r.ID, r.ReadingIDs)
		})
	case *oracle.Reading, *oracle.Position, *oracle.Description:
		if err := db.Save(r).Error; err != nil {
			return fmt.Errorf("saving %T: %w", r, err)
		}
		return nil
	default:
		return fmt.Errorf("unsupported record type %T", record)
	}
}

func (s *GormStore) Delete(ctx context.Context, record Record) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		switch r := record.(type) {
		case *oracle.Reading:
			if r.ID == 0 {
				return errMissingID
			}
			if err := tx.Where("reading_id = ?", r.ID).Delete(&oracle.CardReading{}).Error; err != nil {
				return err
			}
			return tx.Delete(r).Error
		case *oracle.Card:
			if r.ID == 0 {
				return errMissingID
			}
			if err := tx.Where("card_id = ?", r.ID).Delete(&oracle.CardReading{}).Error; err != nil {
				return err
			}
			return tx.Delete(r).Error
		case *oracle.Position:
			if r.ID == 0 {
				return errMissingID
			}
			return tx.Delete(r).Error
		case *oracle.Description:
			if r.ID == 0 {
				return errMissingID
			}
			return tx.Delete(r).Error
		default:
			return fmt.Errorf("unsupported record type %T", record)
		}
	})
}

func (s *GormStore) PurgeReading(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&oracle.Reading{}, id).Error; err != nil {
			return notFound(err, oracle.KindReading, id)
		}

		var positionIDs []uint
		if err := tx.Model(&oracle.Position{}).Where("reading_id = ?", id).Pluck("id", &positionIDs).Error; err != nil {
			return err
		}
		if len(positionIDs) > 0 {
			if err := tx.Where("position_id IN ?", positionIDs).Delete(&oracle.Description{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", positionIDs).Delete(&oracle.Position{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("reading_id = ?", id).Delete(&oracle.CardReading{}).Error; err != nil {
			return err
		}

		var orphanIDs []uint
		linked := tx.Model(&oracle.CardReading{}).Select("card_id")
		if err := tx.Model(&oracle.Card{}).Where("id NOT IN (?)", linked).Pluck("id", &orphanIDs).Error; err != nil {
			return err
		}
		if len(orphanIDs) > 0 {
			if err := tx.Where("card_id IN ?", orphanIDs).Delete(&oracle.Description{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", orphanIDs).Delete(&oracle.Card{}).Error; err != nil {
				return err
			}
		}

		s.log.Info("Purged reading", "reading_id", id, "positions", len(positionIDs), "orphan_cards", len(orphanIDs))
		return tx.Delete(&oracle.Reading{}, id).Error
	})
}

func (s *GormStore) WithTx(ctx context.Context, fn func(ContentStore) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx, log: s.log})
	})
}

// loadLinks fills ReadingIDs for the given cards
func (s *GormStore) loadLinks(ctx context.Context, cards []*oracle.Card) error {
	if len(cards) == 0 {
		return nil
	}
	byID := make(map[uint]*oracle.Card, len(cards))
	ids := make([]uint, 0, len(cards))
	for _, c := range cards {
		byID[c.ID] = c
		ids = append(ids, c.ID)
	}

	var links []oracle.CardReading
	err := s.db.WithContext(ctx).Where("card_id IN ?", ids).Order("card_id, reading_id").Find(&links).Error
	if err != nil {
		return fmt.Errorf("loading card readings: %w", err)
	}
	for _, l := range links {
		c := byID[l.CardID]
		c.ReadingIDs = append(c.ReadingIDs, l.ReadingID)
	}
	return nil
}

func replaceLinks(tx *gorm.DB, cardID uint, readingIDs []uint) error {
	if err := tx.Where("card_id = ?", cardID).Delete(&oracle.CardReading{}).Error; err != nil {
		return fmt.Errorf("clearing card readings: %w", err)
	}
	seen := make(map[uint]bool, len(readingIDs))
	links := make([]oracle.CardReading, 0, len(readingIDs))
	for _, id := range readingIDs {
		if id == 0 || seen[id] {
			continue
		}
		seen[id] = true
		links = append(links, oracle.CardReading{CardID: cardID, ReadingID: id})
	}
	if len(links) == 0 {
		return nil
	}
	if err := tx.Create(&links).Error; err != nil {
		return fmt.Errorf("linking card %d: %w", cardID, err)
	}
	return nil
}

func filter(tx *gorm.DB, table string, q Query) *gorm.DB {
	if q.Status != "" {
		tx = tx.Where(table+".status = ?", q.Status)
	}
	if len(q.IDs) > 0 {
		tx = tx.Where(table+".id IN ?", q.IDs)
	}
	return tx
}

var errMissingID = errors.New("record has no id")

func notFound(err error, kind oracle.Kind, id uint) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &oracle.NotFoundError{Kind: kind, ID: id}
	}
	return fmt.Errorf("loading %s %d: %w", kind, id, err)
}
