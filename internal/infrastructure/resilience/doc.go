/*
Package resilience keeps calls to the external mapping delegate bounded.

# Breaker

After Threshold consecutive failures the breaker opens and calls fail fast
with ErrCircuitOpen. Once Cooldown has passed one probe call is let
through: success closes the breaker, failure opens it again.

	breaker := resilience.New("delegate", resilience.Settings{
		Threshold: 3,
		Cooldown:  30 * time.Second,
	})
	err := breaker.Do(ctx, func(ctx context.Context) error {
		return client.Call(ctx)
	})

# Retry

Retry runs a call under a Backoff schedule. Delays double from Base:

	Backoff{Attempts: 3, Base: 500 * time.Millisecond}  // 500ms, 1s

Wrap an error with Permanent to stop retrying early.
*/
package resilience
