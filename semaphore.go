package vkgrid

import (
	vk "github.com/vulkan-go/vulkan"
)

type Semaphore struct {
	Device      *Device
	VKSemaphore vk.Semaphore
}

// CreateSemaphore creates a binary semaphore for ordering work between queue operations
func (d *Device) CreateSemaphore() (*Semaphore, error) {
	semaphoreCreateInfo := vk.SemaphoreCreateInfo{
		SType: vk.StructureTypeSemaphoreCreateInfo,
	}

	var sema vk.Semaphore

	err := resultError(d.Driver.CreateSemaphore(d.VKDevice, &semaphoreCreateInfo, &sema), "create semaphore")
	if err != nil {
		return nil, err
	}

	return &Semaphore{Device: d, VKSemaphore: sema}, nil
}

func (s *Semaphore) Destroy() {
	s.Device.Driver.DestroySemaphore(s.Device.VKDevice, s.VKSemaphore)
}
