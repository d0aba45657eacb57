// Package resilience groups the fault-tolerance helpers used around outbound
// calls: circuit breakers for page fetches, LLM APIs, webhooks and the
// database, and exponential-backoff retry for the LLM collaborators.
//
//	cb := circuitbreaker.New(circuitbreaker.LLMConfig("openai-api"))
//	result, err := cb.Execute(func() (interface{}, error) {
//	    return client.CreateChatCompletion(ctx, req)
//	})
//
//	err := retry.WithBackoff(ctx, retry.AIAPIConfig(), func() error {
//	    return generate(ctx)
//	})
package resilience
