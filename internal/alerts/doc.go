// Package alerts implements the rule evaluation engine and webhook delivery
// for efficiency alerting. Rules are evaluated against completed analyses;
// webhooks are delivered to Slack, Teams, or generic HTTP targets.
package alerts
