package contracts

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/samber/lo"
	"github.com/trebuchet-org/treb-deploy/internal/domain/models"
)

// Indexer discovers deployable contracts in a Foundry artifacts directory
type Indexer struct {
	projectRoot   string
	artifactsDir  string
	contracts     map[string]*models.Contract   // key: "path:Name", and "Name" when unique
	contractNames map[string][]*models.Contract // key: contract name
	mu            sync.RWMutex
}

// NewIndexer creates a new contract indexer
func NewIndexer(projectRoot, artifactsDir string) *Indexer {
	return &Indexer{
		projectRoot:   projectRoot,
		artifactsDir:  artifactsDir,
		contracts:     make(map[string]*models.Contract),
		contractNames: make(map[string][]*models.Contract),
	}
}

// Index walks the artifacts directory and rebuilds the index
func (i *Indexer) Index() error {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.contracts = make(map[string]*models.Contract)
	i.contractNames = make(map[string][]*models.Contract)

	if _, err := os.Stat(i.artifactsDir); os.IsNotExist(err) {
		if err := i.runForgeBuild(); err != nil {
			return fmt.Errorf("artifacts directory %s not found: %w", i.artifactsDir, err)
		}
		if _, err := os.Stat(i.artifactsDir); os.IsNotExist(err) {
			return fmt.Errorf("artifacts directory %s not found after forge build", i.artifactsDir)
		}
	}

	return filepath.WalkDir(i.artifactsDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == "build-info" {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".json" {
			return nil
		}
		return i.processArtifact(path)
	})
}

// processArtifact adds a single artifact to the index. Unreadable JSON, interfaces
// and abstract contracts are skipped.
func (i *Indexer) processArtifact(artifactPath string) error {
	data, err := os.ReadFile(artifactPath)
	if err != nil {
		return err
	}

	var artifact models.Artifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil
	}

	if artifact.Bytecode.Object == "" || artifact.Bytecode.Object == "0x" {
		return nil
	}

	// compilationTarget has a single entry: source path -> contract name
	var contractName, sourceName string
	for source, contract := range artifact.Metadata.Settings.CompilationTarget {
		sourceName = source
		contractName = contract
	}
	if contractName == "" || sourceName == "" {
		return nil
	}

	relPath, err := filepath.Rel(i.projectRoot, artifactPath)
	if err != nil {
		relPath = artifactPath
	}

	contract := &models.Contract{
		Name:         contractName,
		Path:         sourceName,
		ArtifactPath: relPath,
		Artifact:     &artifact,
	}

	// one artifact per compiler version: the last one walked replaces the earlier
	if previous, ok := i.contracts[contract.FullName()]; ok {
		i.contracts[contract.FullName()] = contract
		for idx, c := range i.contractNames[contractName] {
			if c == previous {
				i.contractNames[contractName][idx] = contract
			}
		}
		if i.contracts[contractName] == previous {
			i.contracts[contractName] = contract
		}
		return nil
	}

	i.contracts[contract.FullName()] = contract

	if existing, ok := i.contractNames[contractName]; ok {
		i.contractNames[contractName] = append(existing, contract)
		delete(i.contracts, contractName)
	} else {
		i.contractNames[contractName] = []*models.Contract{contract}
		i.contracts[contractName] = contract
	}

	return nil
}

// GetContract retrieves a contract by key (name or path:name)
func (i *Indexer) GetContract(key string) (*models.Contract, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	contract, ok := i.contracts[key]
	return contract, ok
}

// ContractsNamed returns every contract with exactly this name
func (i *Indexer) ContractsNamed(name string) []*models.Contract {
	i.mu.RLock()
	defer i.mu.RUnlock()

	return append([]*models.Contract(nil), i.contractNames[name]...)
}

// SearchContracts returns contracts whose name or path contains pattern, case-insensitively
func (i *Indexer) SearchContracts(pattern string) []*models.Contract {
	lowPattern := strings.ToLower(pattern)
	return lo.Filter(i.AllContracts(), func(c *models.Contract, _ int) bool {
		return strings.Contains(strings.ToLower(c.Name), lowPattern) ||
			strings.Contains(strings.ToLower(c.Path), lowPattern)
	})
}

// AllContracts returns every indexed contract once, ordered by path:name
func (i *Indexer) AllContracts() []*models.Contract {
	i.mu.RLock()
	defer i.mu.RUnlock()

	all := lo.UniqBy(lo.Values(i.contracts), func(c *models.Contract) string {
		return c.FullName()
	})
	sort.Slice(all, func(a, b int) bool {
		return all[a].FullName() < all[b].FullName()
	})
	return all
}

// Names returns the distinct contract names in the index
func (i *Indexer) Names() []string {
	i.mu.RLock()
	defer i.mu.RUnlock()

	names := lo.Keys(i.contractNames)
	sort.Strings(names)
	return names
}

// runForgeBuild compiles the project when no artifacts exist yet
func (i *Indexer) runForgeBuild() error {
	if _, err := exec.LookPath("forge"); err != nil {
		return fmt.Errorf("forge not found in PATH, run forge build first")
	}

	cmd := exec.Command("forge", "build")
	cmd.Dir = i.projectRoot

	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("forge build failed: %w\nOutput: %s", err, string(output))
	}

	return nil
}
