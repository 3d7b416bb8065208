package rsarecover

import (
	"github.com/closeprimes/rsarecover/fermat"
	"github.com/sirupsen/logrus"
)

var Logger *logrus.Logger

func init() {
	Logger = logrus.StandardLogger()
	fermat.Logger = Logger
}
