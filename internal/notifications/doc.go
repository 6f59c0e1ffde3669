// Package notifications delivers "episodes ready" messages to the configured
// push channel.
//
// Telegram posts to the bot sendMessage API. WeCom (企业微信) posts an
// application text message using an access token held in a TokenCache, which
// refreshes ahead of expiry and after the server rejects a token. With no
// channel configured, New returns a notifier that drops messages.
package notifications
