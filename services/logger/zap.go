package logsvc

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/nethmiu/Eco-Plus-Y3S2-WE35-sub000/core"
)

// NewZapLogger builds a JSON logger writing to stdout and, when log.filename is set, to a rotated file.
func NewZapLogger(conf *core.Config) (*zap.Logger, error) {
	level := new(zapcore.Level)
	if err := level.UnmarshalText([]byte(conf.Log.Level)); err != nil {
		return nil, err
	}
	zcore := zapcore.NewCore(getEncoder(), getLogWriter(conf.Log), level)
	return zap.New(zcore, zap.AddCaller(), zap.AddCallerSkip(1)).With(
		zap.String("app", conf.AppName),
		zap.String("env", conf.Env),
		zap.String("build", conf.Build),
	), nil
}

func getEncoder() zapcore.Encoder {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	return zapcore.NewJSONEncoder(encoderConfig)
}

func getLogWriter(conf core.LogConfig) zapcore.WriteSyncer {
	consoleSyncer := zapcore.AddSync(os.Stdout)
	if conf.Filename == "" {
		return consoleSyncer
	}
	fileSyncer := zapcore.AddSync(&lumberjack.Logger{
		Filename:   conf.Filename,
		MaxSize:    conf.MaxSize,
		MaxBackups: conf.MaxBackups,
		MaxAge:     conf.MaxAge,
		Compress:   conf.Compress,
	})
	return zapcore.NewMultiWriteSyncer(consoleSyncer, fileSyncer)
}
