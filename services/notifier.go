package services

import (
	"fmt"

	"task-manager/backend/logging"
	"task-manager/backend/utils"

	"github.com/sony/gobreaker"
)

// EmailNotifier sends fire-and-forget notification emails through a
// circuit breaker so a broken SMTP relay cannot stall request handling.
type EmailNotifier struct {
	breaker *gobreaker.CircuitBreaker
}

func NewEmailNotifier(breaker *gobreaker.CircuitBreaker) *EmailNotifier {
	return &EmailNotifier{breaker: breaker}
}

func (n *EmailNotifier) send(to, subject, body string) {
	if n == nil || n.breaker == nil {
		return
	}
	go func() {
		_, err := n.breaker.Execute(func() (interface{}, error) {
			return nil, utils.SendEmail(to, subject, body)
		})
		if err != nil {
			logging.Logger.Warnf("Event ID: EMAIL_SEND_DROPPED, Description: Failed to send email to '%s': %v", to, err)
		}
	}()
}

// SendWelcome greets a newly registered user.
func (n *EmailNotifier) SendWelcome(to, name string) {
	subject := "Welcome to Task Manager"
	body := fmt.Sprintf("Hi %s,<br><br>Your account has been created. You can now sign in and start working on your tasks.", name)
	n.send(to, subject, body)
}

// SendTaskAssigned tells a user they were assigned to a task.
func (n *EmailNotifier) SendTaskAssigned(to, name, taskTitle string) {
	subject := "New Task Assigned"
	body := fmt.Sprintf("Hi %s,<br><br>You have been assigned to the task \"%s\".", name, taskTitle)
	n.send(to, subject, body)
}
