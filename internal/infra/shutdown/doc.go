// Package shutdown coordinates graceful daemon termination.
//
// A Handler owns a context that is cancelled on SIGINT, SIGTERM or an
// explicit Trigger. Long-running loops select on that context; once it is
// done, registered hooks run in reverse order of registration under a
// timeout.
//
//	h := shutdown.NewHandler(10 * time.Second)
//	go supervisor.Run(h.Context())
//	h.OnShutdown(journal.Close)
//	err := h.Wait()
package shutdown
