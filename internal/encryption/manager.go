package encryption

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/kms"
	"github.com/aws/aws-sdk-go-v2/service/kms/types"
	"go.uber.org/zap"

	"radius-admin/internal/config"
	"radius-admin/internal/util"
)

const localKeyID = "local"

// EncryptedData is the stored form of an encrypted field. With KMS the
// data key travels alongside the ciphertext (envelope encryption); in
// local mode EncryptedDEK stays empty and the derived local key is used
// directly.
type EncryptedData struct {
	Ciphertext   string `json:"ciphertext"`
	Nonce        string `json:"nonce"`
	EncryptedDEK string `json:"encrypted_dek,omitempty"`
	KeyID        string `json:"key_id"`
}

// Manager encrypts sensitive settings (the RADIUS shared secret) before
// they reach the database. Production uses AWS KMS envelope encryption;
// development falls back to a local key derived from the hashing pepper.
type Manager struct {
	kmsClient *kms.Client
	keyID     string
	localKey  []byte
	logger    *zap.Logger
}

func NewManager(ctx context.Context, cfg *config.Config) (*Manager, error) {
	m := &Manager{
		keyID:  cfg.KMS.KeyID,
		logger: util.Get(),
	}

	if cfg.KMS.Enabled {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
			awsconfig.WithRegion(cfg.KMS.Region))
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		m.kmsClient = kms.NewFromConfig(awsCfg)
		util.Info("Encryption manager using KMS",
			zap.String("key_id", cfg.KMS.KeyID),
			zap.String("region", cfg.KMS.Region))
		return m, nil
	}

	if cfg.IsProduction() {
		return nil, fmt.Errorf("KMS must be enabled in production")
	}

	// Local mode: derive a stable 256-bit key so encrypted settings
	// survive restarts in development.
	sum := sha256.Sum256([]byte("field-encryption:" + cfg.Hashing.Pepper))
	m.localKey = sum[:]
	util.Warn("Encryption manager using local key derivation, not for production")
	return m, nil
}

// EncryptField encrypts plaintext and returns the JSON-serialized
// envelope ready for storage.
func (m *Manager) EncryptField(ctx context.Context, plaintext string) (string, error) {
	var dek, encryptedDEK []byte
	keyID := localKeyID

	if m.kmsClient != nil {
		out, err := m.kmsClient.GenerateDataKey(ctx, &kms.GenerateDataKeyInput{
			KeyId:   &m.keyID,
			KeySpec: types.DataKeySpecAes256,
		})
		if err != nil {
			return "", fmt.Errorf("failed to generate data key: %w", err)
		}
		dek = out.Plaintext
		encryptedDEK = out.CiphertextBlob
		keyID = m.keyID
	} else {
		dek = m.localKey
	}

	block, err := aes.NewCipher(dek)
	if err != nil {
		return "", fmt.Errorf("failed to create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("failed to create GCM: %w", err)
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	ciphertext := gcm.Seal(nil, nonce, []byte(plaintext), nil)

	envelope := EncryptedData{
		Ciphertext: base64.StdEncoding.EncodeToString(ciphertext),
		Nonce:      base64.StdEncoding.EncodeToString(nonce),
		KeyID:      keyID,
	}
	if encryptedDEK != nil {
		envelope.EncryptedDEK = base64.StdEncoding.EncodeToString(encryptedDEK)
	}

	data, err := json.Marshal(envelope)
	if err != nil {
		return "", fmt.Errorf("failed to serialize envelope: %w", err)
	}
	return string(data), nil
}

// DecryptField reverses EncryptField. A value that does not parse as an
// envelope is returned as-is, so pre-existing plaintext settings keep
// working until the next save re-encrypts them.
func (m *Manager) DecryptField(ctx context.Context, stored string) (string, error) {
	var envelope EncryptedData
	if err := json.Unmarshal([]byte(stored), &envelope); err != nil || envelope.Ciphertext == "" {
		return stored, nil
	}

	var dek []byte
	if envelope.KeyID == localKeyID {
		if m.localKey == nil {
			return "", fmt.Errorf("locally encrypted value but no local key available")
		}
		dek = m.localKey
	} else {
		if m.kmsClient == nil {
			return "", fmt.Errorf("KMS-encrypted value but KMS is disabled")
		}
		blob, err := base64.StdEncoding.DecodeString(envelope.EncryptedDEK)
		if err != nil {
			return "", fmt.Errorf("invalid encrypted data key: %w", err)
		}
		out, err := m.kmsClient.Decrypt(ctx, &kms.DecryptInput{CiphertextBlob: blob})
		if err != nil {
			return "", fmt.Errorf("failed to decrypt data key: %w", err)
		}
		dek = out.Plaintext
	}

	block, err := aes.NewCipher(dek)
	if err != nil {
		return "", fmt.Errorf("failed to create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("failed to create GCM: %w", err)
	}

	nonce, err := base64.StdEncoding.DecodeString(envelope.Nonce)
	if err != nil {
		return "", fmt.Errorf("invalid nonce: %w", err)
	}
	ciphertext, err := base64.StdEncoding.DecodeString(envelope.Ciphertext)
	if err != nil {
		return "", fmt.Errorf("invalid ciphertext: %w", err)
	}

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt field: %w", err)
	}
	return string(plaintext), nil
}
