package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config содержит все настройки приложения Feedback Service
// Собирается один раз при старте и передаётся в конструкторы по ссылке -
// никакого глобального состояния
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Kafka      KafkaConfig
	SMTP       SMTPConfig
	Alerts     AlertsConfig
	Admin      AdminConfig
	Digest     DigestConfig
	Hotel      HotelConfig
}

// ServerConfig - настройки HTTP сервера
type ServerConfig struct {
	Host string // Адрес хоста (по умолчанию 0.0.0.0)
	Port string // Порт сервера (по умолчанию 8085)
}

// DatabaseConfig - настройки подключения к PostgreSQL
// Используется для хранения отзывов (append-only таблица feedback)
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string // Режим SSL (disable/require/verify-full)
}

// RedisConfig - настройки Redis для кеширования агрегированной статистики
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// KafkaConfig - настройки Kafka для событий FEEDBACK_CREATED
type KafkaConfig struct {
	Brokers []string // Список брокеров (формат: host:port)
	Topic   string
}

// SMTPConfig - настройки почтового сервера для алертов операторам
// Enabled=false полностью выключает отправку (ожидаемый режим, не ошибка)
type SMTPConfig struct {
	Host           string
	Port           string
	SenderEmail    string
	SenderPassword string
	Enabled        bool
	DialTimeoutSec int // Таймаут соединения, чтобы зависший SMTP не блокировал запросы
}

// AlertsConfig - пороги срабатывания алертов по категориям
// Оценка строго ниже порога считается нарушением
type AlertsConfig struct {
	FoodQuality        float64
	SeatingArrangement float64
	Parking            float64
	Washroom           float64
	HotelService       float64
	Overall            float64
	Recipients         []string // Адреса операторов
}

// AdminConfig - учётные данные для basic auth на админских маршрутах
// Пароль хранится как bcrypt-хэш
type AdminConfig struct {
	Username     string
	PasswordHash string
}

// DigestConfig - расписание ежедневного дайджеста алертов
type DigestConfig struct {
	Enabled     bool
	Schedule    string // cron-выражение (по умолчанию каждый день в 09:00)
	WindowHours int    // Окно выборки алертов для дайджеста
}

// HotelConfig - название отеля, попадает в письма и имена экспортов
type HotelConfig struct {
	Name string
}

// Load загружает конфигурацию из переменных окружения
// Возвращает ошибку, если не удалось распарсить значения
func Load() (*Config, error) {
	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB value: %w", err)
	}

	smtpTimeout, err := strconv.Atoi(getEnv("SMTP_DIAL_TIMEOUT_SEC", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid SMTP_DIAL_TIMEOUT_SEC value: %w", err)
	}

	digestWindow, err := strconv.Atoi(getEnv("DIGEST_WINDOW_HOURS", "24"))
	if err != nil {
		return nil, fmt.Errorf("invalid DIGEST_WINDOW_HOURS value: %w", err)
	}

	alerts, err := loadAlerts()
	if err != nil {
		return nil, err
	}

	return &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnv("SERVER_PORT", "8085"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "feedback"),
			Password: getEnv("DB_PASSWORD", "feedback"),
			DBName:   getEnv("DB_NAME", "feedback_service"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Kafka: KafkaConfig{
			Brokers: strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
			Topic:   getEnv("KAFKA_TOPIC", "feedback_events"),
		},
		SMTP: SMTPConfig{
			Host:           getEnv("SMTP_HOST", "smtp.gmail.com"),
			Port:           getEnv("SMTP_PORT", "587"),
			SenderEmail:    getEnv("SMTP_SENDER_EMAIL", ""),
			SenderPassword: getEnv("SMTP_SENDER_PASSWORD", ""),
			Enabled:        getEnv("SMTP_ENABLED", "false") == "true",
			DialTimeoutSec: smtpTimeout,
		},
		Alerts: *alerts,
		Admin: AdminConfig{
			Username: getEnv("ADMIN_USERNAME", "admin"),
			// bcrypt-хэш пароля "admin" по умолчанию, в production обязательно переопределить
			PasswordHash: getEnv("ADMIN_PASSWORD_HASH", "$2a$10$N9qo8uLOickgx2ZMRZoMye1VdLmiQ5mk3PpCRFBmVcgLxYCYCIz8W"),
		},
		Digest: DigestConfig{
			Enabled:     getEnv("DIGEST_ENABLED", "true") == "true",
			Schedule:    getEnv("DIGEST_SCHEDULE", "0 9 * * *"),
			WindowHours: digestWindow,
		},
		Hotel: HotelConfig{
			Name: getEnv("HOTEL_NAME", "Hotel Yash Undri"),
		},
	}, nil
}

// loadAlerts парсит пороги алертов
// Значения настраиваются оператором, дефолты взяты из рабочей конфигурации
func loadAlerts() (*AlertsConfig, error) {
	food, err := getEnvFloat("ALERT_THRESHOLD_FOOD_QUALITY", 2.5)
	if err != nil {
		return nil, err
	}
	seating, err := getEnvFloat("ALERT_THRESHOLD_SEATING_ARRANGEMENT", 2.5)
	if err != nil {
		return nil, err
	}
	parking, err := getEnvFloat("ALERT_THRESHOLD_PARKING", 2.5)
	if err != nil {
		return nil, err
	}
	washroom, err := getEnvFloat("ALERT_THRESHOLD_WASHROOM", 2.0)
	if err != nil {
		return nil, err
	}
	service, err := getEnvFloat("ALERT_THRESHOLD_HOTEL_SERVICE", 2.0)
	if err != nil {
		return nil, err
	}
	overall, err := getEnvFloat("ALERT_THRESHOLD_OVERALL", 2.5)
	if err != nil {
		return nil, err
	}

	recipients := strings.Split(getEnv("ALERT_RECIPIENTS", "manager@example.com"), ",")
	for i := range recipients {
		recipients[i] = strings.TrimSpace(recipients[i])
	}

	return &AlertsConfig{
		FoodQuality:        food,
		SeatingArrangement: seating,
		Parking:            parking,
		Washroom:           washroom,
		HotelService:       service,
		Overall:            overall,
		Recipients:         recipients,
	}, nil
}

func (c *ServerConfig) Address() string {
	return c.Host + ":" + c.Port
}

func (c *RedisConfig) Address() string {
	return c.Host + ":" + c.Port
}

func (c *SMTPConfig) Address() string {
	return c.Host + ":" + c.Port
}

// DSN возвращает строку подключения к PostgreSQL
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) (float64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value: %w", key, err)
	}
	return value, nil
}
