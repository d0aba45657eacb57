// Package logging builds the slog loggers used by the cmds and carries
// request-scoped loggers through contexts.
//
//	slog.SetDefault(logging.NewLogger())
//
//	func (h ArchiveHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
//	    logger := logging.WithRequestID(r.Context(), slog.Default())
//	    logger.Info("archive requested", slog.String("question_id", id))
//	}
package logging
