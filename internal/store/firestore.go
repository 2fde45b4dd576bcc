package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ServiceAccount holds the service account fields used to authenticate against Firestore
type ServiceAccount struct {
	ProjectID    string
	PrivateKeyID string
	PrivateKey   string
	ClientEmail  string
	ClientID     string
	AuthURI      string
	TokenURI     string
}

// CredentialsJSON renders the account as a Google service account key file
func (a ServiceAccount) CredentialsJSON() ([]byte, error) {
	return json.Marshal(map[string]string{
		"type":                        "service_account",
		"project_id":                  a.ProjectID,
		"private_key_id":              a.PrivateKeyID,
		"private_key":                 a.PrivateKey,
		"client_email":                a.ClientEmail,
		"client_id":                   a.ClientID,
		"auth_uri":                    a.AuthURI,
		"token_uri":                   a.TokenURI,
		"auth_provider_x509_cert_url": "https://www.googleapis.com/oauth2/v1/certs",
		"client_x509_cert_url":        "https://www.googleapis.com/robot/v1/metadata/x509/" + a.ClientEmail,
	})
}

type firestoreStore struct {
	client *firestore.Client
}

// NewFirestoreStore opens a Firestore client authenticated with the service account
func NewFirestoreStore(ctx context.Context, account ServiceAccount) (*firestoreStore, error) {
	if account.ProjectID == "" {
		return nil, fmt.Errorf("firestore project id is required")
	}
	creds, err := account.CredentialsJSON()
	if err != nil {
		return nil, fmt.Errorf("failed to encode firestore credentials: %w", err)
	}

	client, err := firestore.NewClient(ctx, account.ProjectID, option.WithCredentialsJSON(creds))
	if err != nil {
		return nil, fmt.Errorf("failed to create firestore client: %w", err)
	}

	return &firestoreStore{client: client}, nil
}

func (s *firestoreStore) Find(ctx context.Context, q Query) ([]Document, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	fq := s.client.Collection(q.Collection).Query
	for _, f := range q.Filters {
		fq = fq.Where(f.Field, string(f.Op), f.Value)
	}
	if q.OrderBy != "" {
		dir := firestore.Asc
		if q.Direction == Descending {
			dir = firestore.Desc
		}
		fq = fq.OrderBy(q.OrderBy, dir)
	}
	if q.Limit > 0 {
		fq = fq.Limit(q.Limit)
	}

	iter := fq.Documents(ctx)
	defer iter.Stop()

	docs := make([]Document, 0)
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to query %s: %w", q.Collection, err)
		}
		docs = append(docs, Document{ID: snap.Ref.ID, Data: snap.Data()})
	}

	return docs, nil
}

func (s *firestoreStore) Get(ctx context.Context, collection, id string) (*Document, error) {
	if id == "" {
		return nil, ErrNotFound
	}

	snap, err := s.client.Collection(collection).Doc(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s/%s: %w", collection, id, err)
	}

	return &Document{ID: snap.Ref.ID, Data: snap.Data()}, nil
}

func (s *firestoreStore) Add(ctx context.Context, collection string, data map[string]any) (string, error) {
	fields := make(map[string]any, len(data))
	for k, v := range data {
		if IsServerTimestamp(v) {
			fields[k] = firestore.ServerTimestamp
			continue
		}
		fields[k] = v
	}

	ref, _, err := s.client.Collection(collection).Add(ctx, fields)
	if err != nil {
		return "", fmt.Errorf("failed to add to %s: %w", collection, err)
	}

	return ref.ID, nil
}

func (s *firestoreStore) Close() error {
	return s.client.Close()
}
