package store

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FirestoreStore implements Store on top of Cloud Firestore.
type FirestoreStore struct {
	client *firestore.Client
	log    zerolog.Logger
}

func NewFirestoreStore(ctx context.Context, projectID, credentialsFile string, logger zerolog.Logger) (*FirestoreStore, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("new firestore client: %w", err)
	}

	return &FirestoreStore{
		client: client,
		log:    logger.With().Str("component", "firestore").Logger(),
	}, nil
}

func (f *FirestoreStore) Close() error {
	return f.client.Close()
}

func (f *FirestoreStore) buildQuery(q Query) firestore.Query {
	fq := f.client.Collection(q.Collection).Query
	if q.Filter != nil {
		fq = fq.Where(q.Filter.Field, q.Filter.Op, q.Filter.Value)
	}
	if q.OrderBy != nil {
		dir := firestore.Asc
		if q.OrderBy.Desc {
			dir = firestore.Desc
		}
		fq = fq.OrderBy(q.OrderBy.Field, dir)
	}
	if q.Limit > 0 {
		fq = fq.Limit(q.Limit)
	}
	if q.StartAfter != nil {
		if snap, ok := q.StartAfter.Cursor.(*firestore.DocumentSnapshot); ok {
			fq = fq.StartAfter(snap)
		}
	}
	return fq
}

func (f *FirestoreStore) GetAll(ctx context.Context, q Query) ([]Document, error) {
	snaps, err := f.buildQuery(q).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", q.Collection, err)
	}

	docs := make([]Document, len(snaps))
	for i, s := range snaps {
		docs[i] = toDocument(s)
	}
	return docs, nil
}

func (f *FirestoreStore) Subscribe(ctx context.Context, q Query, fn func(Snapshot)) (CancelFunc, error) {
	subCtx, cancel := context.WithCancel(ctx)
	it := f.buildQuery(q).Snapshots(subCtx)

	go func() {
		defer it.Stop()
		for {
			qs, err := it.Next()
			if err != nil {
				if errors.Is(err, context.Canceled) || status.Code(err) == codes.Canceled {
					return
				}
				f.log.Error().Err(err).Str("collection", q.Collection).Msg("snapshot listener stopped")
				return
			}

			snap := Snapshot{Changes: make([]Change, 0, len(qs.Changes))}
			for _, ch := range qs.Changes {
				snap.Changes = append(snap.Changes, Change{
					Kind: toChangeKind(ch.Kind),
					Doc:  toDocument(ch.Doc),
				})
			}

			docs, err := qs.Documents.GetAll()
			if err == nil {
				snap.Docs = make([]Document, len(docs))
				for i, d := range docs {
					snap.Docs[i] = toDocument(d)
				}
			}

			fn(snap)
		}
	}()

	return CancelFunc(cancel), nil
}

func (f *FirestoreStore) Add(ctx context.Context, collection string, data map[string]any) (Document, error) {
	ref, _, err := f.client.Collection(collection).Add(ctx, resolveSentinels(data))
	if err != nil {
		return Document{}, fmt.Errorf("add to %s: %w", collection, err)
	}
	return Document{ID: ref.ID, Data: data}, nil
}

func (f *FirestoreStore) Set(ctx context.Context, collection, id string, data map[string]any) error {
	if _, err := f.client.Collection(collection).Doc(id).Set(ctx, resolveSentinels(data)); err != nil {
		return fmt.Errorf("set %s/%s: %w", collection, id, err)
	}
	return nil
}

func (f *FirestoreStore) Delete(ctx context.Context, collection, id string) error {
	if _, err := f.client.Collection(collection).Doc(id).Delete(ctx); err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	return nil
}

func (f *FirestoreStore) BatchDelete(ctx context.Context, collection string, ids []string) error {
	if len(ids) > MaxBatchDelete {
		return fmt.Errorf("batch delete of %d exceeds limit of %d", len(ids), MaxBatchDelete)
	}

	batch := f.client.Batch()
	for _, id := range ids {
		batch.Delete(f.client.Collection(collection).Doc(id))
	}
	if _, err := batch.Commit(ctx); err != nil {
		return fmt.Errorf("commit batch delete on %s: %w", collection, err)
	}
	return nil
}

// resolveSentinels maps store sentinels to their Firestore equivalents.
func resolveSentinels(data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for k, v := range data {
		if _, ok := v.(serverTimestamp); ok {
			out[k] = firestore.ServerTimestamp
			continue
		}
		out[k] = v
	}
	return out
}

func toDocument(s *firestore.DocumentSnapshot) Document {
	return Document{
		ID:     s.Ref.ID,
		Data:   s.Data(),
		Cursor: s,
	}
}

func toChangeKind(k firestore.DocumentChangeKind) ChangeKind {
	switch k {
	case firestore.DocumentAdded:
		return ChangeAdded
	case firestore.DocumentModified:
		return ChangeModified
	default:
		return ChangeRemoved
	}
}
