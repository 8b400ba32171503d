package entangled

// PreTangleResult is a hook's rewrite of a block body before expansion.
type PreTangleResult struct {
	// Source replaces the block body.
	Source string
	// Metadata records what the hook removed, keyed by hook-specific names.
	Metadata []Attribute
}

// PostTangleResult is a hook's rewrite of a target's final text.
type PostTangleResult struct {
	// Prefix is prepended (with a newline) to the output.
	Prefix string
	// Content replaces the main output text.
	Content string
}

// Hook is one content transform in the tangle pipeline. Either operation may
// return nil to signal "no change".
type Hook interface {
	Name() string
	PreTangle(block *CodeBlock) (*PreTangleResult, error)
	PostTangle(content string, block *CodeBlock) (*PostTangleResult, error)
}

// HookRegistry is the ordered hook pipeline. Pre-tangle runs in registration
// order; post-tangle runs in reverse so the pipeline wraps symmetrically.
type HookRegistry struct {
	hooks []Hook
}

// NewHookRegistry creates an empty registry.
func NewHookRegistry() *HookRegistry { return &HookRegistry{} }

// Add appends a hook.
func (r *HookRegistry) Add(h Hook) { r.hooks = append(r.hooks, h) }

// Len returns the number of registered hooks.
func (r *HookRegistry) Len() int { return len(r.hooks) }

// RunPreTangle applies all hooks to a block body in registration order.
// The returned bool reports whether any hook changed the source.
func (r *HookRegistry) RunPreTangle(block *CodeBlock) (string, bool, error) {
	source := block.Source
	changed := false
	for _, h := range r.hooks {
		shadow := *block
		shadow.Source = source
		res, err := h.PreTangle(&shadow)
		if err != nil {
			return "", false, err
		}
		if res != nil {
			source = res.Source
			changed = true
		}
	}
	return source, changed, nil
}

// RunPostTangle applies all hooks to a target's final text in reverse
// registration order. block is the first block of the target; each hook sees
// its body as it was when that hook ran pre-tangle, so it finds the lines it
// stripped. The first registered hook's prefix ends up on top.
func (r *HookRegistry) RunPostTangle(content string, block *CodeBlock) (string, error) {
	views := make([]CodeBlock, len(r.hooks))
	shadow := *block
	for i, h := range r.hooks {
		views[i] = shadow
		res, err := h.PreTangle(&views[i])
		if err != nil {
			return "", err
		}
		if res != nil {
			shadow.Source = res.Source
		}
	}
	for i := len(r.hooks) - 1; i >= 0; i-- {
		res, err := r.hooks[i].PostTangle(content, &views[i])
		if err != nil {
			return "", err
		}
		if res == nil {
			continue
		}
		content = res.Content
		if res.Prefix != "" {
			content = res.Prefix + "\n" + content
		}
	}
	return content, nil
}
