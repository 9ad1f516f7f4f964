// Package assembly implements read/write and instance discovery against
// the CIP Assembly Object (Class 0x04): a concatenated block of process
// data addressed by instance number, exposed through attribute 3.
package assembly

import (
	"time"

	"github.com/IamMikeHelsel/enip-scanner/internal/cip"
	"github.com/IamMikeHelsel/enip-scanner/internal/cip/path"
	"go.uber.org/zap"
)

// ClassID is the CIP Assembly Object class.
const ClassID uint32 = 0x04

// attributeID is the only attribute the scanner reads or writes: the
// assembly's concatenated data member.
const attributeID uint32 = 3

// Read returns the raw byte array of the given assembly instance.
func Read(endpoint string, instance uint32, timeout time.Duration, logger *zap.Logger) ([]byte, error) {
	attr := attributeID
	pathBytes, pathWords, err := path.InstanceAttribute(ClassID, instance, &attr)
	if err != nil {
		return nil, cip.Wrap(cip.KindInvalidArgument, "build assembly path", err)
	}
	resp, err := cip.Execute(endpoint, pathBytes, pathWords, cip.ServiceGetAttributeSingle, nil, timeout, logger)
	if err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// Write sets the given assembly instance's data member to value.
func Write(endpoint string, instance uint32, value []byte, timeout time.Duration, logger *zap.Logger) error {
	attr := attributeID
	pathBytes, pathWords, err := path.InstanceAttribute(ClassID, instance, &attr)
	if err != nil {
		return cip.Wrap(cip.KindInvalidArgument, "build assembly path", err)
	}
	_, err = cip.Execute(endpoint, pathBytes, pathWords, cip.ServiceSetAttributeSingle, value, timeout, logger)
	return err
}

// DiscoveredInstance is one instance a Discover scan classified as
// present: the read succeeded and returned a nonzero byte count.
type DiscoveredInstance struct {
	Instance uint32
	Data     []byte
}

// Discover probes instances [first, last] inclusive and returns every
// one that answers with a successful, nonempty read. Instances that
// time out or fail are skipped rather than aborting the whole scan,
// since an assembly object's valid instance range is implementation
// defined and mostly sparse.
func Discover(endpoint string, first, last uint32, timeout time.Duration, logger *zap.Logger) []DiscoveredInstance {
	var found []DiscoveredInstance
	for instance := first; instance <= last; instance++ {
		data, err := Read(endpoint, instance, timeout, logger)
		if err != nil {
			continue
		}
		if len(data) == 0 {
			continue
		}
		found = append(found, DiscoveredInstance{Instance: instance, Data: data})
	}
	return found
}
