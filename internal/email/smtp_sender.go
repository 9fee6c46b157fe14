package email

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/smtp"
	"net/url"
	"strings"
)

// SMTPSender envia correos via SMTP.
// Si confirmURL no esta vacio, el correo incluye un link con email y token como query.
type SMTPSender struct {
	host       string
	port       int
	username   string
	password   string
	from       string
	fromName   string
	useTLS     bool
	confirmURL string
}

func NewSMTPSender(host string, port int, username, password, from, fromName string, useTLS bool, confirmURL string) (*SMTPSender, error) {
	if strings.TrimSpace(host) == "" {
		return nil, fmt.Errorf("smtp host is required")
	}
	if strings.TrimSpace(from) == "" {
		return nil, fmt.Errorf("smtp from is required")
	}
	if port == 0 {
		port = 587
	}
	return &SMTPSender{
		host:       host,
		port:       port,
		username:   username,
		password:   password,
		from:       from,
		fromName:   fromName,
		useTLS:     useTLS,
		confirmURL: strings.TrimSpace(confirmURL),
	}, nil
}

func (s *SMTPSender) SendEmailConfirmation(_ context.Context, toEmail, fullName, token string) error {
	if strings.TrimSpace(toEmail) == "" {
		return fmt.Errorf("to email is required")
	}
	if strings.TrimSpace(token) == "" {
		return fmt.Errorf("confirmation token is required")
	}

	subject := "Confirm your e-mail address"
	body := buildConfirmationBody(s.confirmURL, toEmail, fullName, token)
	msg := buildMessage(s.from, s.fromName, toEmail, subject, body)
	addr := fmt.Sprintf("%s:%d", s.host, s.port)

	var auth smtp.Auth
	if s.username != "" {
		auth = smtp.PlainAuth("", s.username, s.password, s.host)
	}

	if s.useTLS {
		conn, err := tls.Dial("tcp", addr, &tls.Config{
			ServerName: s.host,
		})
		if err != nil {
			return err
		}
		defer conn.Close()

		client, err := smtp.NewClient(conn, s.host)
		if err != nil {
			return err
		}
		defer client.Quit()

		if auth != nil {
			if err := client.Auth(auth); err != nil {
				return err
			}
		}
		if err := client.Mail(s.from); err != nil {
			return err
		}
		if err := client.Rcpt(toEmail); err != nil {
			return err
		}
		writer, err := client.Data()
		if err != nil {
			return err
		}
		if _, err := writer.Write([]byte(msg)); err != nil {
			_ = writer.Close()
			return err
		}
		return writer.Close()
	}

	return smtp.SendMail(addr, auth, s.from, []string{toEmail}, []byte(msg))
}

func buildConfirmationBody(confirmURL, toEmail, fullName, token string) string {
	greeting := "Hello,"
	if name := strings.TrimSpace(fullName); name != "" {
		greeting = fmt.Sprintf("Hello %s,", name)
	}
	body := fmt.Sprintf("%s\n\nYour e-mail confirmation token is %s.\n", greeting, token)
	if confirmURL != "" {
		u, err := url.Parse(confirmURL)
		if err == nil {
			q := u.Query()
			q.Set("emailAddress", toEmail)
			q.Set("confirmationToken", token)
			u.RawQuery = q.Encode()
			body += fmt.Sprintf("You can also confirm it by visiting %s\n", u.String())
		}
	}
	return body
}

func buildMessage(from, fromName, to, subject, body string) string {
	fromHeader := from
	if strings.TrimSpace(fromName) != "" {
		fromHeader = fmt.Sprintf("%s <%s>", fromName, from)
	}

	headers := []string{
		fmt.Sprintf("From: %s", fromHeader),
		fmt.Sprintf("To: %s", to),
		fmt.Sprintf("Subject: %s", subject),
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
	}

	return strings.Join(headers, "\r\n") + "\r\n\r\n" + body
}
