package policy

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/sentinelops/sentinel/internal/logger"
	"github.com/sentinelops/sentinel/pkg/models"
)

var (
	ErrPolicyNotFound = errors.New("policy not found")
	ErrPolicyExists   = errors.New("policy already exists")
	ErrInvalidPolicy  = errors.New("invalid policy")
)

type entry struct {
	policy models.Policy
	cond   Condition
}

// Store holds the declarative remediation policies. Policies load from a YAML
// document at startup; every mutation writes the full set back. A missing or
// unreadable file falls back to the built-in defaults so the controller is
// never left without policies.
type Store struct {
	mu       sync.RWMutex
	path     string
	policies map[string]*entry
	order    []string
}

type document struct {
	Policies []models.Policy `yaml:"policies"`
}

func NewStore(path string) *Store {
	s := &Store{
		path:     path,
		policies: make(map[string]*entry),
	}
	s.load()
	return s
}

func (s *Store) load() {
	policies, err := readDocument(s.path)
	if err != nil {
		logger.Warnf("Policy file %s unavailable, using defaults: %v", s.path, err)
		policies = DefaultPolicies()
	}

	for _, p := range policies {
		cond, err := ParseCondition(p.Condition)
		if err != nil {
			logger.WithPolicy(p.Name).Warnf("Skipping policy with bad condition: %v", err)
			continue
		}
		s.policies[p.Name] = &entry{policy: p, cond: cond}
		s.order = append(s.order, p.Name)
	}

	logger.Infof("Loaded %d policies", len(s.order))
}

func readDocument(path string) ([]models.Policy, error) {
	if path == "" {
		return nil, errors.New("no policy file configured")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse policy file: %w", err)
	}
	return doc.Policies, nil
}

// persist writes the current set back to the configured file. Called only
// after explicit mutations; a store running on defaults with no file never
// writes.
func (s *Store) persist() error {
	if s.path == "" {
		return nil
	}

	doc := document{Policies: s.listLocked()}
	data, err := yaml.Marshal(&doc)
	if err != nil {
		return fmt.Errorf("failed to marshal policies: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write policy file: %w", err)
	}
	return nil
}

func (s *Store) validate(p models.Policy) (Condition, error) {
	if p.Name == "" {
		return Condition{}, fmt.Errorf("%w: name is required", ErrInvalidPolicy)
	}
	if p.Service == "" {
		return Condition{}, fmt.Errorf("%w: service is required", ErrInvalidPolicy)
	}
	switch p.Action {
	case models.ActionRestartContainer, models.ActionScaleUp, models.ActionAlert:
	default:
		return Condition{}, fmt.Errorf("%w: unknown action %q", ErrInvalidPolicy, p.Action)
	}
	if p.CooldownSeconds < 0 {
		return Condition{}, fmt.Errorf("%w: cooldown must not be negative", ErrInvalidPolicy)
	}

	cond, err := ParseCondition(p.Condition)
	if err != nil {
		return Condition{}, fmt.Errorf("%w: %v", ErrInvalidPolicy, err)
	}
	return cond, nil
}

func (s *Store) Create(p models.Policy) error {
	cond, err := s.validate(p)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.policies[p.Name]; exists {
		return ErrPolicyExists
	}

	s.policies[p.Name] = &entry{policy: p, cond: cond}
	s.order = append(s.order, p.Name)
	return s.persist()
}

func (s *Store) Update(name string, p models.Policy) error {
	p.Name = name
	cond, err := s.validate(p)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.policies[name]; !exists {
		return ErrPolicyNotFound
	}

	s.policies[name] = &entry{policy: p, cond: cond}
	return s.persist()
}

func (s *Store) Delete(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.policies[name]; !exists {
		return ErrPolicyNotFound
	}

	delete(s.policies, name)
	for i, n := range s.order {
		if n == name {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return s.persist()
}

func (s *Store) Get(name string) (models.Policy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, exists := s.policies[name]
	if !exists {
		return models.Policy{}, ErrPolicyNotFound
	}
	return e.policy, nil
}

func (s *Store) List() []models.Policy {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listLocked()
}

func (s *Store) listLocked() []models.Policy {
	out := make([]models.Policy, 0, len(s.order))
	for _, name := range s.order {
		if e, ok := s.policies[name]; ok {
			out = append(out, e.policy)
		}
	}
	return out
}

func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.policies)
}

// Matching returns the enabled policies targeting service whose condition
// holds for the observed metric and value.
func (s *Store) Matching(service, metric string, value float64) []models.Policy {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Policy
	for _, name := range s.order {
		e, ok := s.policies[name]
		if !ok || !e.policy.Enabled || e.policy.Service != service {
			continue
		}
		if e.cond.Matches(metric, value) {
			out = append(out, e.policy)
		}
	}
	return out
}
