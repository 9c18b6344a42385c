// Package domain contains the core business entities of the task manager:
// users, tasks, categories, tags and the activity trail. It holds
// validation and mutation rules and is independent of any storage or
// delivery mechanism.
package domain
