package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/casegraph/internal/common"
	"github.com/dmitrijs2005/casegraph/internal/server/models"
)

// ErrVaultUnavailable is returned by credential operations when no vault
// passphrase was configured.
var ErrVaultUnavailable = errors.New("credential vault is not configured")

func (s *GraphService) CreateCredential(ctx context.Context, owner string, in models.CredentialCreate) (*models.Credential, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := models.Validate(in); err != nil {
		return nil, err
	}
	if s.box == nil {
		return nil, ErrVaultUnavailable
	}

	ct, nonce, err := s.box.Seal(in.Secret)
	if err != nil {
		return nil, fmt.Errorf("sealing secret: %w", err)
	}

	var created *models.Credential
	err = s.mutate(ctx, func(ctx context.Context, r graphRepos) error {
		var err error
		created, err = r.credentials.Create(ctx, &models.Credential{
			Name:             in.Name,
			Description:      in.Description,
			Active:           true,
			Owner:            owner,
			SecretCiphertext: ct,
			SecretNonce:      nonce,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "credential stored", "owner", owner, "credential_id", created.ID, "name", created.Name)
	return created, nil
}

// ListCredentials returns credential metadata. Secrets stay sealed.
func (s *GraphService) ListCredentials(ctx context.Context, owner string) ([]*models.Credential, error) {
	return s.repomanager.Credentials(s.db).List(ctx, owner)
}

func (s *GraphService) GetCredential(ctx context.Context, owner string, id int64) (*models.Credential, error) {
	c, err := s.repomanager.Credentials(s.db).Get(ctx, owner, id)
	if err != nil {
		return nil, notFound(err, common.ErrCredentialNotFound)
	}
	return c, nil
}

// UpdateCredential renames, re-describes, toggles or rotates a credential.
func (s *GraphService) UpdateCredential(ctx context.Context, owner string, id int64, patch models.CredentialUpdate) (*models.Credential, error) {
	if patch.Name != nil {
		trimmed := strings.TrimSpace(*patch.Name)
		patch.Name = &trimmed
	}
	if err := models.Validate(patch); err != nil {
		return nil, err
	}

	var ct, nonce []byte
	if patch.Secret != nil {
		if s.box == nil {
			return nil, ErrVaultUnavailable
		}
		var err error
		if ct, nonce, err = s.box.Seal(*patch.Secret); err != nil {
			return nil, fmt.Errorf("sealing secret: %w", err)
		}
	}

	var updated *models.Credential
	err := s.mutate(ctx, func(ctx context.Context, r graphRepos) error {
		c, err := r.credentials.Get(ctx, owner, id)
		if err != nil {
			return notFound(err, common.ErrCredentialNotFound)
		}
		patch.Apply(c)
		if ct != nil {
			c.SecretCiphertext, c.SecretNonce = ct, nonce
		}
		updated, err = r.credentials.Update(ctx, c)
		return notFound(err, common.ErrCredentialNotFound)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *GraphService) DeleteCredential(ctx context.Context, owner string, id int64) error {
	return s.mutate(ctx, func(ctx context.Context, r graphRepos) error {
		return notFound(r.credentials.Delete(ctx, owner, id), common.ErrCredentialNotFound)
	})
}

// FindActiveCredential resolves the secret of the owner's active credential
// called name. Absent and inactive credentials both report ok == false.
func (s *GraphService) FindActiveCredential(ctx context.Context, owner, name string) (secret string, ok bool, err error) {
	c, err := s.repomanager.Credentials(s.db).FindActiveByName(ctx, owner, name)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	if s.box == nil {
		return "", false, ErrVaultUnavailable
	}

	secret, err = s.box.Open(c.SecretCiphertext, c.SecretNonce)
	if err != nil {
		return "", false, fmt.Errorf("opening credential %d: %w", c.ID, err)
	}
	return secret, true, nil
}
