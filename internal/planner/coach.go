package planner

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// Roles of a conversation turn.
const (
	RoleUser  = "user"
	RoleCoach = "assistant"
)

// chatHistoryLimit is how many earlier turns go back to the model.
const chatHistoryLimit = 5

const coachMaxTokens = 500

var ErrEmptyMessage = errors.New("message is required")

const coachPrompt = `You are a study coach inside a terminal study planner. You help with study planning, learning strategies such as active recall and spaced repetition, technical subjects and staying motivated.
Keep answers practical and encouraging, at most three short paragraphs of plain text.`

const materialsPrompt = `You are a study coach recommending learning resources. You answer in plain text.`

// ChatFallback is the reply used when the model cannot be reached.
const ChatFallback = `I'm having trouble connecting right now, but I'm here to help! Here are some quick tips:

Study Tips: Break your learning into 25-minute focused sessions with 5-minute breaks (Pomodoro Technique). This helps maintain concentration and prevents burnout.

Goal Setting: Make your goals SMART (Specific, Measurable, Achievable, Relevant, Time-bound). Instead of "learn programming," try "complete 3 Java tutorials this week."

Stay Motivated: Track your progress daily, celebrate small wins, and remember that consistency beats perfection. Every expert was once a beginner!

What specific topic would you like help with? I'll do my best to assist you!`

// MaterialsFallback is the suggestion list used when the model cannot be reached.
const MaterialsFallback = `I'm sorry, I couldn't generate specific suggestions right now. However, for your goal, consider these general approaches:

- Online Courses: Look for structured courses on platforms like Coursera, Udemy, edX, or Khan Academy. Search for "[Your Goal] for Beginners" or "Advanced [Your Goal]".
- Books: Find highly-rated textbooks or practical guides on Amazon, O'Reilly, or local libraries.
- Official Documentation: Many technologies have excellent official documentation or tutorials (e.g., MDN Web Docs for web development, Python's official tutorial).
- Practice Platforms: Websites like LeetCode, HackerRank, Codecademy, or freeCodeCamp offer interactive exercises and projects.
- YouTube Tutorials: Search for video series from reputable educators or channels.
- Community Forums: Join online communities (e.g., Stack Overflow, Reddit communities like r/learnprogramming) for discussions and help.`

// Message is one turn of a coaching conversation.
type Message struct {
	Role    string
	Content string
}

// Answer is free text from the coach. Fallback marks the built-in text.
type Answer struct {
	Text     string
	Fallback bool
}

// Chat answers msg in the context of the last few turns of history. Like
// Generate it only fails on invalid input.
func (c *Client) Chat(ctx context.Context, history []Message, msg string) (Answer, error) {
	msg = strings.TrimSpace(msg)
	if msg == "" {
		return Answer{}, ErrEmptyMessage
	}

	msgs := []openai.ChatCompletionMessage{{Role: openai.ChatMessageRoleSystem, Content: coachPrompt}}
	for _, m := range RecentHistory(history) {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: chatRole(m.Role), Content: m.Content})
	}
	msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: msg})

	text, err := c.complete(ctx, msgs, coachMaxTokens)
	if err == nil && strings.TrimSpace(text) == "" {
		err = errors.New("empty reply")
	}
	if err != nil {
		c.logger.Warn("chat failed, using fallback", "error", err)
		return Answer{Text: ChatFallback, Fallback: true}, nil
	}
	c.logger.Info("chat answered", "history", len(msgs)-2)
	return Answer{Text: strings.TrimSpace(text)}, nil
}

// SuggestMaterials recommends kinds of learning resources for goal.
func (c *Client) SuggestMaterials(ctx context.Context, goal string) (Answer, error) {
	goal = strings.TrimSpace(goal)
	if goal == "" {
		return Answer{}, ErrMissingGoal
	}

	text, err := c.complete(ctx, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: materialsPrompt},
		{Role: openai.ChatMessageRoleUser, Content: MaterialsPrompt(goal)},
	}, coachMaxTokens)
	if err == nil && strings.TrimSpace(text) == "" {
		err = errors.New("empty reply")
	}
	if err != nil {
		c.logger.Warn("material suggestions failed, using fallback", "goal", goal, "error", err)
		return Answer{Text: MaterialsFallback, Fallback: true}, nil
	}
	c.logger.Info("materials suggested", "goal", goal)
	return Answer{Text: strings.TrimSpace(text)}, nil
}

// RecentHistory returns the tail of history that is sent with a chat turn.
func RecentHistory(history []Message) []Message {
	if len(history) <= chatHistoryLimit {
		return history
	}
	return history[len(history)-chatHistoryLimit:]
}

func chatRole(role string) string {
	if role == RoleCoach {
		return openai.ChatMessageRoleAssistant
	}
	return openai.ChatMessageRoleUser
}

// MaterialsPrompt asks for resource categories for goal, without links.
func MaterialsPrompt(goal string) string {
	return fmt.Sprintf(`Suggest learning materials for someone whose goal is: "%s".
Group them by type: online courses, books, documentation, practice platforms, video tutorials and communities.
For each type name two or three well-known resources and say in one line why each fits the goal.
Do not include URLs. Keep the list under 300 words.

For example, for "Learn Python" you might suggest the official Python tutorial, "Automate the Boring Stuff with Python" and Exercism's Python track.`, goal)
}
