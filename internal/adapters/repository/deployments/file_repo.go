package deployments

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/samber/lo"
	"github.com/trebuchet-org/treb-deploy/internal/domain"
	"github.com/trebuchet-org/treb-deploy/internal/domain/config"
	"github.com/trebuchet-org/treb-deploy/internal/domain/models"
	"github.com/trebuchet-org/treb-deploy/internal/usecase"
)

const (
	TrebDir          = ".treb"
	DeploymentsFile  = "deployments.json"
	TransactionsFile = "transactions.json"
)

// FileRepository stores deployments and their transactions in JSON files under .treb/
type FileRepository struct {
	rootDir      string
	mu           sync.RWMutex
	deployments  map[string]*models.Deployment
	transactions map[string]*models.Transaction
}

// NewFileRepository opens the registry under rootDir. Missing files mean an empty registry;
// the .treb directory is only created on the first write.
func NewFileRepository(rootDir string) (*FileRepository, error) {
	m := &FileRepository{
		rootDir:      rootDir,
		deployments:  make(map[string]*models.Deployment),
		transactions: make(map[string]*models.Transaction),
	}

	if err := m.load(); err != nil {
		return nil, fmt.Errorf("failed to load registry: %w", err)
	}

	return m, nil
}

// NewFileRepositoryFromConfig creates a new FileRepository from RuntimeConfig
func NewFileRepositoryFromConfig(cfg *config.RuntimeConfig) (*FileRepository, error) {
	return NewFileRepository(cfg.ProjectRoot)
}

// load reads all registry files
func (m *FileRepository) load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.loadFile(DeploymentsFile, &m.deployments); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to load deployments: %w", err)
	}

	if err := m.loadFile(TransactionsFile, &m.transactions); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to load transactions: %w", err)
	}

	// a file containing "null" decodes into a nil map
	if m.deployments == nil {
		m.deployments = make(map[string]*models.Deployment)
	}
	if m.transactions == nil {
		m.transactions = make(map[string]*models.Transaction)
	}

	return nil
}

// loadFile loads a JSON file from the .treb directory
func (m *FileRepository) loadFile(filename string, v any) error {
	data, err := os.ReadFile(filepath.Join(m.rootDir, TrebDir, filename))
	if err != nil {
		return err
	}

	return json.Unmarshal(data, v)
}

// saveFile writes data to a JSON file in the .treb directory through a temp file rename
func (m *FileRepository) saveFile(filename string, v any) error {
	trebDir := filepath.Join(m.rootDir, TrebDir)
	if err := os.MkdirAll(trebDir, 0755); err != nil {
		return fmt.Errorf("failed to create %s directory: %w", TrebDir, err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	path := filepath.Join(trebDir, filename)
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return err
	}

	return os.Rename(tmpPath, path)
}

// GetDeployment retrieves a deployment by ID
func (m *FileRepository) GetDeployment(ctx context.Context, id string) (*models.Deployment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	dep, exists := m.deployments[id]
	if !exists {
		return nil, domain.ErrNotFound
	}

	return m.hydrate(dep), nil
}

// ListDeployments retrieves deployments matching the filter
func (m *FileRepository) ListDeployments(ctx context.Context, filter usecase.DeploymentFilter) ([]*models.Deployment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	matched := lo.Filter(lo.Values(m.deployments), func(dep *models.Deployment, _ int) bool {
		return (filter.Namespace == "" || dep.Namespace == filter.Namespace) &&
			(filter.ChainID == 0 || dep.ChainID == filter.ChainID) &&
			(filter.ContractName == "" || dep.ContractName == filter.ContractName) &&
			(filter.Label == "" || dep.Label == filter.Label)
	})

	return lo.Map(matched, func(dep *models.Deployment, _ int) *models.Deployment {
		return m.hydrate(dep)
	}), nil
}

// SaveDeployment adds or replaces a deployment record
func (m *FileRepository) SaveDeployment(ctx context.Context, deployment *models.Deployment) error {
	if deployment.ID == "" {
		return fmt.Errorf("deployment has no ID")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	clone := *deployment
	clone.Transaction = nil
	m.deployments[deployment.ID] = &clone

	if err := m.saveFile(DeploymentsFile, m.deployments); err != nil {
		return fmt.Errorf("failed to save deployments: %w", err)
	}
	return nil
}

// SaveTransaction adds or replaces a transaction record
func (m *FileRepository) SaveTransaction(ctx context.Context, tx *models.Transaction) error {
	if tx.ID == "" {
		return fmt.Errorf("transaction has no ID")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	clone := *tx
	m.transactions[tx.ID] = &clone

	if err := m.saveFile(TransactionsFile, m.transactions); err != nil {
		return fmt.Errorf("failed to save transactions: %w", err)
	}
	return nil
}

// hydrate clones a deployment and links its transaction. Callers hold the read lock.
func (m *FileRepository) hydrate(dep *models.Deployment) *models.Deployment {
	clone := *dep
	if dep.TransactionID != "" {
		if tx, exists := m.transactions[dep.TransactionID]; exists {
			txClone := *tx
			clone.Transaction = &txClone
		}
	}
	return &clone
}

var _ usecase.DeploymentRepository = (*FileRepository)(nil)
