package api

import "github.com/rpupo63/melba-site-backend/validation"

// initializeHandlers creates and returns all handlers organized in a routeHandlers struct
func initializeHandlers(deps Dependencies, router router) *routeHandlers {
	v := validation.New()
	posts := deps.Database.Posts()

	formDeps := submissionDeps{
		validator:   v,
		notifier:    deps.Notifier,
		metrics:     newSubmissionMetrics(router.registry),
		acknowledge: router.settings.Mail.Acknowledge,
	}

	return &routeHandlers{
		submissions:    newSubmissionRoutes(deps.Database, formDeps),
		records:        newRecordRoutes(deps.Database),
		publicHandler:  newPublicHandler(posts, deps.Database.Programs()),
		authHandler:    newAuthHandler(deps.Credentials, deps.Sessions, router.settings.Production),
		blogHandler:    newPostHandler(blogPosts, posts, v, deps.Uploads, router.policy),
		eventHandler:   newPostHandler(eventPosts, posts, v, deps.Uploads, router.policy),
		programHandler: newProgramHandler(deps.Database.Programs(), v, deps.Uploads, router.policy),
		healthHandler:  newHealthHandler(router.startupTime),
	}
}
