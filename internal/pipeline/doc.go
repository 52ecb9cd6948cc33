// Package pipeline is the facade the rest of the application uses: a Builder
// accumulates checkpoints and tasks, resolves them into a collection and
// wraps it with an executor in a Pipeline. A Pipeline is built once and then
// executed every frame with Execute.
package pipeline
