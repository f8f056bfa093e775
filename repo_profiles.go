package authsync

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Profiles is the store for cached profile metadata.
type Profiles interface {
	repository.Repository[*Profile]

	GetBySubject(ctx context.Context, subjectID string) (*Profile, error)
	GetBySubjectTx(ctx context.Context, tx bun.IDB, subjectID string) (*Profile, error)
	UpsertBySubject(ctx context.Context, record *Profile) (*Profile, error)
	UpsertBySubjectTx(ctx context.Context, tx bun.IDB, record *Profile) (*Profile, error)
}

type profiles struct {
	repository.Repository[*Profile]
	db  *bun.DB
	now func() time.Time
}

var (
	_ Profiles                        = (*profiles)(nil)
	_ repository.Repository[*Profile] = (*profiles)(nil)
)

type ProfilesOption func(*profiles)

// WithProfilesClock injects a custom clock (useful for tests).
func WithProfilesClock(clock func() time.Time) ProfilesOption {
	return func(p *profiles) {
		if clock != nil {
			p.now = clock
		}
	}
}

func NewProfilesRepository(db *bun.DB, opts ...ProfilesOption) Profiles {
	repo := repository.NewRepository[*Profile](db, repository.ModelHandlers[*Profile]{
		NewRecord: func() *Profile { return &Profile{} },
		GetID: func(p *Profile) uuid.UUID {
			if p == nil {
				return uuid.Nil
			}
			return p.ID
		},
		SetID: func(p *Profile, id uuid.UUID) {
			if p != nil {
				p.ID = id
			}
		},
	})

	repoProfiles := &profiles{
		Repository: repo,
		db:         db,
		now:        time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(repoProfiles)
		}
	}

	return repoProfiles
}

func (p *profiles) GetBySubject(ctx context.Context, subjectID string) (*Profile, error) {
	return p.GetBySubjectTx(ctx, p.db, subjectID)
}

func (p *profiles) GetBySubjectTx(ctx context.Context, tx bun.IDB, subjectID string) (*Profile, error) {
	record := &Profile{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.subject_id = ?", strings.TrimSpace(subjectID)).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return record, nil
}

// UpsertBySubject creates or refreshes the cached row for a subject. New
// rows get a deterministic UUID derived from the subject identifier so
// repeated syncs from different devices converge on the same record.
func (p *profiles) UpsertBySubject(ctx context.Context, record *Profile) (*Profile, error) {
	return p.UpsertBySubjectTx(ctx, p.db, record)
}

func (p *profiles) UpsertBySubjectTx(ctx context.Context, tx bun.IDB, record *Profile) (*Profile, error) {
	if record == nil || strings.TrimSpace(record.SubjectID) == "" {
		return nil, sql.ErrNoRows
	}
	record.SubjectID = strings.TrimSpace(record.SubjectID)

	now := p.now()
	record.LastSeenAt = &now

	existing, err := p.GetBySubjectTx(ctx, tx, record.SubjectID)
	if err != nil && !repository.IsRecordNotFound(err) && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	if existing == nil || err != nil {
		if record.ID == uuid.Nil {
			if id, err := hashid.NewUUID(record.SubjectID); err == nil {
				record.ID = id
			}
		}
		return p.CreateTx(ctx, tx, record)
	}

	record.ID = existing.ID
	record.CreatedAt = existing.CreatedAt

	_, err = tx.NewUpdate().
		Model(record).
		Column("display_name", "photo_url", "email", "phone_number", "sign_in_provider", "last_seen_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return nil, err
	}

	return record, nil
}
