package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/smtp"

	"github.com/mentorhub/mentorhub/internal/logging"
	"github.com/mentorhub/mentorhub/internal/user"
)

// Service sends transactional mail over SMTP. Callers decide whether a send
// is awaited or dispatched in a goroutine; failures never mutate account
// state.
type Service struct {
	smtpHost      string
	smtpPort      string
	smtpUser      string
	smtpPassword  string
	fromAddress   string
	clientBaseURL string
}

func NewService(smtpHost, smtpPort, smtpUser, smtpPassword, fromAddress, clientBaseURL string) *Service {
	return &Service{
		smtpHost:      smtpHost,
		smtpPort:      smtpPort,
		smtpUser:      smtpUser,
		smtpPassword:  smtpPassword,
		fromAddress:   fromAddress,
		clientBaseURL: clientBaseURL,
	}
}

// SendVerificationEmail sends the email verification link to a new or
// re-requesting account.
func (s *Service) SendVerificationEmail(ctx context.Context, toEmail, firstName, token string) error {
	logger := logging.GetLoggerFromContext(ctx)

	verificationLink := fmt.Sprintf("%s/verify-email?token=%s", s.clientBaseURL, token)

	subject := "Verify your email address"
	body, err := s.renderVerificationEmailTemplate(firstName, verificationLink)
	if err != nil {
		logger.Error("failed to render verification email template", "error", err)
		return fmt.Errorf("render template: %w", err)
	}

	if err := s.sendEmail(toEmail, subject, body); err != nil {
		logger.Error("failed to send verification email", "email", toEmail, "error", err)
		return fmt.Errorf("send email: %w", err)
	}

	logger.Info("verification email sent", "email", toEmail)
	return nil
}

// SendWelcomeEmail sends the post-verification welcome mail. Designed to be
// called in a goroutine; verification has already succeeded by the time this
// runs.
func (s *Service) SendWelcomeEmail(ctx context.Context, toEmail, firstName string, role user.Role) error {
	logger := logging.GetLoggerFromContext(ctx)

	subject := fmt.Sprintf("Welcome to MentorHub, %s!", firstName)
	body, err := s.renderWelcomeEmailTemplate(firstName, role)
	if err != nil {
		logger.Error("failed to render welcome email template", "error", err)
		return fmt.Errorf("render template: %w", err)
	}

	if err := s.sendEmail(toEmail, subject, body); err != nil {
		logger.Error("failed to send welcome email", "email", toEmail, "error", err)
		return fmt.Errorf("send email: %w", err)
	}

	logger.Info("welcome email sent", "email", toEmail)
	return nil
}

func (s *Service) sendEmail(to, subject, body string) error {
	auth := smtp.PlainAuth("", s.smtpUser, s.smtpPassword, s.smtpHost)

	msg := []byte(fmt.Sprintf(
		"From: %s\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/html; charset=UTF-8\r\n"+
			"\r\n"+
			"%s\r\n",
		s.fromAddress, to, subject, body,
	))

	addr := fmt.Sprintf("%s:%s", s.smtpHost, s.smtpPort)
	return smtp.SendMail(addr, auth, s.fromAddress, []string{to}, msg)
}

var verificationTmpl = template.Must(template.New("verification").Parse(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body {
            font-family: Arial, sans-serif;
            line-height: 1.6;
            color: #333;
            max-width: 600px;
            margin: 0 auto;
            padding: 20px;
        }
        .header {
            background-color: #F43F5E;
            color: white;
            padding: 20px;
            text-align: center;
            border-radius: 5px 5px 0 0;
        }
        .content {
            background-color: #f9f9f9;
            padding: 30px;
            border-radius: 0 0 5px 5px;
        }
        .button {
            display: inline-block;
            background-color: #F43F5E;
            color: white !important;
            padding: 12px 30px;
            text-decoration: none;
            border-radius: 5px;
            margin: 20px 0;
        }
        .footer {
            margin-top: 30px;
            font-size: 12px;
            color: #666;
            text-align: center;
        }
    </style>
</head>
<body>
    <div class="header">
        <h1>Welcome to MentorHub!</h1>
    </div>
    <div class="content">
        <h2>Hi {{.FirstName}}!</h2>
        <p>Thank you for joining the MentorHub community! To complete your registration and start your mentorship journey, please verify your email address.</p>

        <a href="{{.VerificationLink}}" class="button" style="color: white !important;">Verify Email Address</a>

        <p>Or copy and paste this link into your browser:</p>
        <p style="word-break: break-all; color: #F43F5E;">{{.VerificationLink}}</p>

        <p style="margin-top: 30px;">If you didn't create an account, you can safely ignore this email.</p>
    </div>
    <div class="footer">
        <p>This link will expire in 24 hours.</p>
    </div>
</body>
</html>
`))

func (s *Service) renderVerificationEmailTemplate(firstName, verificationLink string) (string, error) {
	var buf bytes.Buffer
	data := struct {
		FirstName        string
		VerificationLink string
	}{
		FirstName:        firstName,
		VerificationLink: verificationLink,
	}

	if err := verificationTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("execute template: %w", err)
	}

	return buf.String(), nil
}

var welcomeTmpl = template.Must(template.New("welcome").Parse(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body {
            font-family: Arial, sans-serif;
            line-height: 1.6;
            color: #333;
            max-width: 600px;
            margin: 0 auto;
            padding: 20px;
        }
        .header {
            background-color: #F43F5E;
            color: white;
            padding: 20px;
            text-align: center;
            border-radius: 5px 5px 0 0;
        }
        .content {
            background-color: #f9f9f9;
            padding: 30px;
            border-radius: 0 0 5px 5px;
        }
        .button {
            display: inline-block;
            background-color: #F43F5E;
            color: white !important;
            padding: 12px 30px;
            text-decoration: none;
            border-radius: 5px;
            margin: 20px 0;
        }
    </style>
</head>
<body>
    <div class="header">
        <h1>Welcome to MentorHub!</h1>
    </div>
    <div class="content">
        <h2>Congratulations, {{.FirstName}}!</h2>
        <p>Your email has been verified and your {{.Role}} account is now active!</p>
        {{if .IsMentor}}
        <p>As a mentor, you're now part of our community helping the next generation of developers. Complete your profile so mentees can find you!</p>
        {{else}}
        <p>As a mentee, you now have access to our network of mentors ready to guide you on your tech journey. Start exploring mentors who match your interests!</p>
        {{end}}
        <a href="{{.ClientBaseURL}}" class="button" style="color: white !important;">Get Started</a>
    </div>
</body>
</html>
`))

func (s *Service) renderWelcomeEmailTemplate(firstName string, role user.Role) (string, error) {
	var buf bytes.Buffer
	data := struct {
		FirstName     string
		Role          string
		IsMentor      bool
		ClientBaseURL string
	}{
		FirstName:     firstName,
		Role:          string(role),
		IsMentor:      role == user.RoleMentor,
		ClientBaseURL: s.clientBaseURL,
	}

	if err := welcomeTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("execute template: %w", err)
	}

	return buf.String(), nil
}
