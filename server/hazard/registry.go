package hazard

import (
	"fmt"
	"sync"
)

// Registry manages the running agents, keyed by Mattermost user ID.
type Registry struct {
	mu     sync.RWMutex
	agents map[string]Agent
}

// NewRegistry creates an empty agent registry.
func NewRegistry() *Registry {
	return &Registry{
		agents: make(map[string]Agent),
	}
}

// Register adds an agent to the registry.
// Returns an error if an agent for the same user already exists.
func (r *Registry) Register(agent Agent) error {
	if agent == nil {
		return fmt.Errorf("cannot register nil agent")
	}

	userID := agent.GetUserID()
	if userID == "" {
		return fmt.Errorf("agent user ID cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.agents[userID]; exists {
		return fmt.Errorf("agent for user %s already registered", userID)
	}

	r.agents[userID] = agent
	return nil
}

// Unregister removes an agent from the registry and stops it.
// The agent is always removed, even if Stop fails.
func (r *Registry) Unregister(userID string) error {
	r.mu.Lock()
	agent, exists := r.agents[userID]
	if !exists {
		r.mu.Unlock()
		return fmt.Errorf("agent for user %s not found", userID)
	}
	delete(r.agents, userID)
	r.mu.Unlock()

	if err := agent.Stop(); err != nil {
		return fmt.Errorf("failed to stop agent %s: %w", userID, err)
	}

	return nil
}

// Get retrieves the agent for a user, or nil.
func (r *Registry) Get(userID string) Agent {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.agents[userID]
}

// List returns a snapshot of all registered agents.
func (r *Registry) List() []Agent {
	r.mu.RLock()
	defer r.mu.RUnlock()

	agents := make([]Agent, 0, len(r.agents))
	for _, agent := range r.agents {
		agents = append(agents, agent)
	}

	return agents
}

// UnregisterAll stops every agent and empties the registry.
// Returns the first error encountered, but continues with the remaining agents.
func (r *Registry) UnregisterAll() error {
	r.mu.Lock()
	agents := make([]Agent, 0, len(r.agents))
	for userID, agent := range r.agents {
		agents = append(agents, agent)
		delete(r.agents, userID)
	}
	r.mu.Unlock()

	var firstError error
	for _, agent := range agents {
		if err := agent.Stop(); err != nil && firstError == nil {
			firstError = fmt.Errorf("failed to stop agent %s: %w", agent.GetUserID(), err)
		}
	}

	return firstError
}

// Count returns the number of registered agents.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.agents)
}
