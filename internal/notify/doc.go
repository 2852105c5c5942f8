// Package notify posts sale announcements to a Discord webhook.
//
// A run's sales become one embed each, followed by a summary embed carrying the running
// total. Discord caps a message at MaxEmbeds embeds, so longer lists are sent as several
// messages in order. In dry mode payloads are logged instead of sent.
package notify
