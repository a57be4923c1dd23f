package task

// Builder defines a task. Every method panics with ErrRegistryFrozen once the registry is frozen.
type Builder struct {
	task *Task
}

// Task returns the task being defined.
func (builder *Builder) Task() *Task {
	return builder.task
}

// DependsOn adds dependencies, executed before this task.
func (builder *Builder) DependsOn(names ...string) *Builder {
	builder.checkFrozen()

	builder.task.dependencies = append(builder.task.dependencies, names...)

	return builder
}

// WithCriteria adds a criteria. The task is skipped unless all of them hold.
func (builder *Builder) WithCriteria(criteria Criteria) *Builder {
	builder.checkFrozen()

	if criteria != nil {
		builder.task.criteria = append(builder.task.criteria, criteria)
	}

	return builder
}

// ContinueOnError lets the run go on when the task fails.
func (builder *Builder) ContinueOnError() *Builder {
	builder.checkFrozen()

	builder.task.continueOnError = true

	return builder
}

// OnError sets the handler called when the task failure stops the run.
func (builder *Builder) OnError(handler ErrorHandler) *Builder {
	builder.checkFrozen()

	builder.task.errorHandler = handler

	return builder
}

// Finally sets the handler called after the task, whatever its outcome.
func (builder *Builder) Finally(handler FinallyHandler) *Builder {
	builder.checkFrozen()

	builder.task.finallyHandler = handler

	return builder
}

// Does appends an action.
func (builder *Builder) Does(action Action) *Builder {
	builder.checkFrozen()

	if action != nil {
		builder.task.actions = append(builder.task.actions, action)
	}

	return builder
}

// Description sets the description shown by `kiln tasks`.
func (builder *Builder) Description(text string) *Builder {
	builder.checkFrozen()

	builder.task.description = text

	return builder
}

func (builder *Builder) checkFrozen() {
	if builder.task.registry != nil && builder.task.registry.IsFrozen() {
		panic(ErrRegistryFrozen)
	}
}
