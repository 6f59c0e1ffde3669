// Package organizer reconciles source show trees into a canonical library.
//
// A pass walks every configured task. Each show directory under the task
// source is parsed, resolved against the metadata provider and bucketed by
// season; each season is then diffed against the destination and the missing
// episodes are renamed, moved and announced. Episodes already present in the
// destination are never touched, so repeated passes are idempotent.
//
// Failures are scoped to the show that produced them. The pass continues with
// the next show and the failures are returned together from RunAll.
package organizer
